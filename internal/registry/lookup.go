package registry

import (
	"strings"
)

// SearchCourtsByName does a case-insensitive fuzzy name search against the
// court registry. A court matches when every word of the query appears in its
// name, or the query is a substring of the name (or vice versa). Results keep
// registry order so callers taking the first match are deterministic.
func (r *Registries) SearchCourtsByName(query string) []Court {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	words := strings.Fields(q)

	var matches []Court
	for _, c := range r.courts {
		name := strings.ToLower(c.Name)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			matches = append(matches, c)
			continue
		}
		all := true
		for _, w := range words {
			if !strings.Contains(name, w) {
				all = false
				break
			}
		}
		if all && len(words) > 1 {
			matches = append(matches, c)
		}
	}
	return matches
}

// CourtByCitationString finds the court whose citation string equals the
// given token, ignoring case.
func (r *Registries) CourtByCitationString(cite string) (Court, bool) {
	c := strings.TrimSpace(cite)
	if c == "" {
		return Court{}, false
	}
	for _, court := range r.courts {
		if strings.EqualFold(court.CitationString, c) {
			return court, true
		}
	}
	return Court{}, false
}

// ReporterByKey looks up a reporter edition by its exact key.
func (r *Registries) ReporterByKey(key string) (Reporter, bool) {
	rep, ok := r.reporters[strings.TrimSpace(key)]
	return rep, ok
}

// ReporterByKeyFold looks up a reporter edition case-insensitively.
func (r *Registries) ReporterByKeyFold(key string) (Reporter, bool) {
	rep, ok := r.reporterLow[strings.ToLower(strings.TrimSpace(key))]
	return rep, ok
}

// ReporterByVariation scans every registry entry's variation list for a
// case-insensitive substring match against the token.
func (r *Registries) ReporterByVariation(token string) (Reporter, bool) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return Reporter{}, false
	}
	for _, rep := range r.reporterAll {
		for _, v := range rep.Variations {
			lv := strings.ToLower(v)
			if strings.Contains(t, lv) || strings.Contains(lv, t) {
				return rep, true
			}
		}
	}
	return Reporter{}, false
}

// ReportersInFamily returns the editions whose Base matches the given family.
func (r *Registries) ReportersInFamily(base string) []Reporter {
	var out []Reporter
	for _, rep := range r.reporterAll {
		if rep.Base == base {
			out = append(out, rep)
		}
	}
	return out
}

// JudgeByName looks up a judge by case-insensitive bidirectional substring
// containment: the candidate may be a fragment of the registry name ("Gilstrap")
// or carry extra tokens around it ("Judge Rodney Gilstrap, presiding").
func (r *Registries) JudgeByName(candidate string) (Judge, bool) {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if c == "" {
		return Judge{}, false
	}
	for _, j := range r.judges {
		full := strings.ToLower(j.FullName)
		if strings.Contains(full, c) || strings.Contains(c, full) {
			return j, true
		}
	}
	return Judge{}, false
}
