// Package citation finds stored legal documents that support a chatbot
// answer, starting from statute numbers mentioned in the question
package citation

import (
	"regexp"

	"chatiip-backend/textutil"
)

var (
	// 12/2023/ND-CP, 45/2019/QH14, 01/2021/TT-BLDTBXH
	strictNumber = regexp.MustCompile(`\b\d{1,3}/\d{4}/[A-Z][A-Z0-9]*(?:-[A-Z][A-Z0-9]*)*\b`)
	looseNumber  = regexp.MustCompile(`\b\d{1,3}/\d{4}\b`)
)

const maxLooseCandidates = 3

// ExtractCandidates returns statute-number tokens found in question, in the
// folded form produced by textutil.FoldForMatch. Full numbers with an
// issuer code win; bare number/year pairs are used only when none exist
func ExtractCandidates(question string) []string {
	q := textutil.FoldForMatch(question)

	if out := unique(strictNumber.FindAllString(q, -1)); len(out) > 0 {
		return out
	}
	loose := looseNumber.FindAllString(q, -1)
	if len(loose) > maxLooseCandidates {
		loose = loose[:maxLooseCandidates]
	}
	return unique(loose)
}

func unique(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
