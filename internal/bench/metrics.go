package bench

import "sort"

// Outcome pairs the expected language of a sample with the language the
// model predicted for it.
type Outcome struct {
	Want string
	Got  string
}

// LanguageMetrics holds per-language evaluation results.
type LanguageMetrics struct {
	Support        int // samples labeled with this language
	TruePositives  int
	FalsePositives int
	FalseNegatives int
	Precision      float64
	Recall         float64
	F1             float64
}

// Metrics holds evaluation results over a labeled sample set.
type Metrics struct {
	Total       int
	Correct     int
	Accuracy    float64
	MacroF1     float64
	PerLanguage map[string]LanguageMetrics
}

// Evaluate computes accuracy and per-language precision, recall, and F1
// from classification outcomes. The macro F1 averages over languages that
// appear in the expected labels.
func Evaluate(outcomes []Outcome) Metrics {
	m := Metrics{
		Total:       len(outcomes),
		PerLanguage: make(map[string]LanguageMetrics),
	}
	if len(outcomes) == 0 {
		return m
	}

	for _, o := range outcomes {
		want := m.PerLanguage[o.Want]
		want.Support++
		if o.Got == o.Want {
			want.TruePositives++
			m.Correct++
		} else {
			want.FalseNegatives++
			got := m.PerLanguage[o.Got]
			got.FalsePositives++
			m.PerLanguage[o.Got] = got
		}
		m.PerLanguage[o.Want] = want
	}

	labeled := 0
	for lang, lm := range m.PerLanguage {
		if lm.TruePositives+lm.FalsePositives > 0 {
			lm.Precision = float64(lm.TruePositives) / float64(lm.TruePositives+lm.FalsePositives)
		}
		if lm.TruePositives+lm.FalseNegatives > 0 {
			lm.Recall = float64(lm.TruePositives) / float64(lm.TruePositives+lm.FalseNegatives)
		}
		if lm.Precision+lm.Recall > 0 {
			lm.F1 = 2 * lm.Precision * lm.Recall / (lm.Precision + lm.Recall)
		}
		m.PerLanguage[lang] = lm

		if lm.Support > 0 {
			labeled++
			m.MacroF1 += lm.F1
		}
	}
	if labeled > 0 {
		m.MacroF1 /= float64(labeled)
	}

	m.Accuracy = float64(m.Correct) / float64(m.Total)

	return m
}

// Languages returns the evaluated languages sorted alphabetically.
func (m Metrics) Languages() []string {
	langs := make([]string, 0, len(m.PerLanguage))
	for lang := range m.PerLanguage {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}
