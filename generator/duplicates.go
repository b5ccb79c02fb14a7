package generator

import (
	"path"
	"sort"

	"github.com/c360studio/iconforge/identity"
	"github.com/c360studio/iconforge/model"
)

// DuplicateReport lists naming conflicts between source icons.
type DuplicateReport struct {
	// SameFilename holds raw file names present in both type directories.
	SameFilename []string
	// Collisions maps a derived name to the distinct sources producing it.
	Collisions map[string][]string
}

// Empty reports whether no conflicts were found.
func (r *DuplicateReport) Empty() bool {
	return len(r.SameFilename) == 0 && len(r.Collisions) == 0
}

// CheckDuplicates scans both type directories. When a conflict exists the
// report is returned together with a *DuplicateError.
func (g *Generator) CheckDuplicates() (*DuplicateReport, error) {
	perType := make(map[model.IconType][]iconFile, len(model.AllTypes))
	for _, t := range model.AllTypes {
		files, err := g.scan(t, false)
		if err != nil {
			return nil, err
		}
		perType[t] = files
	}

	report := findDuplicates(perType)
	if !report.Empty() {
		g.logger.Error("Duplicate icon names",
			"same_filename", report.SameFilename,
			"collisions", len(report.Collisions))
		return report, &DuplicateError{Report: report}
	}
	return report, nil
}

func findDuplicates(perType map[model.IconType][]iconFile) *DuplicateReport {
	report := &DuplicateReport{Collisions: make(map[string][]string)}

	raw := make(map[string]int)
	for _, t := range model.AllTypes {
		names := make(map[string]bool)
		for _, f := range perType[t] {
			names[path.Base(f.Source)] = true
		}
		for name := range names {
			raw[name]++
		}
	}
	for name, n := range raw {
		if n > 1 {
			report.SameFilename = append(report.SameFilename, name)
		}
	}
	sort.Strings(report.SameFilename)

	type group struct {
		sources []string
		raws    map[string]bool
		perType map[model.IconType]int
	}
	groups := make(map[string]*group)
	for _, t := range model.AllTypes {
		for _, f := range perType[t] {
			name, err := identity.SafeBaseName(f.Path)
			if err != nil {
				// Reported by the build that tries to generate it.
				continue
			}
			gr, ok := groups[name]
			if !ok {
				gr = &group{raws: make(map[string]bool), perType: make(map[model.IconType]int)}
				groups[name] = gr
			}
			gr.sources = append(gr.sources, f.Source)
			gr.raws[path.Base(f.Source)] = true
			gr.perType[t]++
		}
	}

	// A raw name shared by the two directories is already reported above;
	// only distinct raw names or repeats inside one directory count here.
	for name, gr := range groups {
		if len(gr.sources) < 2 {
			continue
		}
		repeated := false
		for _, n := range gr.perType {
			if n > 1 {
				repeated = true
			}
		}
		if len(gr.raws) > 1 || repeated {
			sort.Strings(gr.sources)
			report.Collisions[name] = gr.sources
		}
	}
	return report
}
