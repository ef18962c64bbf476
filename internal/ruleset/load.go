package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"patra/pkg/domain"
	dErrors "patra/pkg/domain-errors"
)

// Parse decodes and validates a single rule document. YAML is a superset of
// JSON, so one decoder covers both formats.
func Parse(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRulesetInvalid, "parse ruleset document")
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// LoadFile reads and validates one rule document from disk.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRulesetInvalid, fmt.Sprintf("read ruleset file %s", path))
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRulesetInvalid, fmt.Sprintf("load %s", filepath.Base(path)))
	}
	return rs, nil
}

// LoadDir loads every .yaml, .yml and .json document in dir, keyed by scheme
// code. Two documents claiming the same scheme is a configuration error.
func LoadDir(dir string) (map[domain.SchemeCode]*RuleSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeRulesetInvalid, fmt.Sprintf("read ruleset dir %s", dir))
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".yaml", ".yml", ".json":
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	sets := make(map[domain.SchemeCode]*RuleSet, len(names))
	for _, name := range names {
		rs, err := LoadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		if _, dup := sets[rs.SchemeCode]; dup {
			return nil, dErrors.Newf(dErrors.CodeRulesetInvalid,
				"duplicate ruleset for scheme %q in %s", rs.SchemeCode, name)
		}
		sets[rs.SchemeCode] = rs
	}
	return sets, nil
}
