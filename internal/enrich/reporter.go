package enrich

import (
	"fmt"
	"strings"

	"github.com/openjurist/casepipe/internal/model"
	"github.com/openjurist/casepipe/internal/registry"
)

// Reporter match methods, in fallback order.
const (
	MatchExact         = "exact"
	MatchFold          = "case-insensitive"
	MatchVariation     = "variation"
	MatchEditionFamily = "edition-family"
)

// NormalizeReporters resolves each citation's reporter token to a registry
// edition. Resolution order per citation: family-aware handling for the
// Federal Reporter and Federal Supplement, exact key match, case-insensitive
// key match, variation substring match. First successful rule wins.
//
// The per-document normalized count is the number of distinct editions, not
// the number of citations matched; see DistinctEditions.
func (e *Enricher) NormalizeReporters(citations []model.Citation) ([]model.NormalizedReporter, error) {
	if len(citations) > 0 && (e.reg == nil || e.reg.ReporterCount() == 0) {
		return nil, fmt.Errorf("reporter registry is empty")
	}
	var out []model.NormalizedReporter
	for _, c := range citations {
		token := strings.TrimSpace(c.Reporter)
		if token == "" {
			continue
		}
		if nr, ok := e.normalizeToken(token); ok {
			out = append(out, nr)
		}
	}
	return out, nil
}

func (e *Enricher) normalizeToken(token string) (model.NormalizedReporter, bool) {
	if rep, ok := matchFederalFamily(e.reg, token); ok {
		return fromRegistry(token, rep, MatchEditionFamily), true
	}
	if rep, ok := e.reg.ReporterByKey(token); ok {
		return fromRegistry(token, rep, MatchExact), true
	}
	if rep, ok := e.reg.ReporterByKeyFold(token); ok {
		return fromRegistry(token, rep, MatchFold), true
	}
	if rep, ok := e.reg.ReporterByVariation(token); ok {
		return fromRegistry(token, rep, MatchVariation), true
	}
	return model.NormalizedReporter{}, false
}

// matchFederalFamily handles the two edition families whose raw tokens vary
// the most in the wild: the Federal Reporter ("F.", "F.2d", "F. 3d") and the
// Federal Supplement ("F. Supp.", "F.Supp.2d"). The edition is picked by the
// ordinal substring; its absence means the first series.
func matchFederalFamily(reg *registry.Registries, token string) (registry.Reporter, bool) {
	compact := strings.ToLower(strings.ReplaceAll(token, " ", ""))

	if strings.HasPrefix(compact, "f.supp") {
		key := "F. Supp."
		switch {
		case strings.Contains(compact, "2d"):
			key = "F. Supp. 2d"
		case strings.Contains(compact, "3d"):
			key = "F. Supp. 3d"
		}
		return reg.ReporterByKey(key)
	}

	if strings.HasPrefix(compact, "f.") || compact == "f" {
		key := "F."
		switch {
		case strings.Contains(compact, "2d"):
			key = "F.2d"
		case strings.Contains(compact, "3d"):
			key = "F.3d"
		case strings.Contains(compact, "4th"):
			key = "F.4th"
		default:
			// "F.R.D." and friends are not Federal Reporter tokens; let the
			// exact/variation rules handle them.
			if compact != "f." && compact != "f" {
				return registry.Reporter{}, false
			}
		}
		return reg.ReporterByKey(key)
	}

	return registry.Reporter{}, false
}

func fromRegistry(original string, rep registry.Reporter, method string) model.NormalizedReporter {
	return model.NormalizedReporter{
		Original:     original,
		Edition:      rep.Key,
		BaseReporter: rep.Base,
		Name:         rep.Name,
		CiteType:     rep.CiteType,
		MatchMethod:  method,
	}
}

// DistinctEditions counts the unique editions in a normalization result. Two
// citations both resolving to "F.3d" contribute one.
func DistinctEditions(reporters []model.NormalizedReporter) int {
	seen := make(map[string]struct{}, len(reporters))
	for _, r := range reporters {
		seen[r.Edition] = struct{}{}
	}
	return len(seen)
}
