package output

import "io"

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/main/sarif-2.1/schema/sarif-schema-2.1.0.json"

// SARIFWriter outputs issues, advisories and findings in SARIF v2.1.0 format.
type SARIFWriter struct{}

func (s *SARIFWriter) Write(w io.Writer, report *Report) error {
	return WriteJSON(w, buildSARIF(report))
}

// SARIF schema types (v2.1.0)

type sarifLog struct {
	Version string     `json:"version"`
	Schema  string     `json:"$schema"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string             `json:"id"`
	ShortDescription sarifMessage       `json:"shortDescription"`
	HelpURI          string             `json:"helpUri,omitempty"`
	DefaultConfig    sarifDefaultConfig `json:"defaultConfiguration"`
}

type sarifDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
	Fixes     []sarifFix      `json:"fixes,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           sarifRegion           `json:"region"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine"`
	StartColumn int `json:"startColumn,omitempty"`
}

type sarifFix struct {
	Description sarifMessage `json:"description"`
}

// sarifBuilder collects rules in first-seen order.
type sarifBuilder struct {
	uri     string
	rules   []sarifRule
	seen    map[string]bool
	results []sarifResult
}

func (b *sarifBuilder) add(ruleID, title, helpURI, level, message, suggestion string, line int, col *int) {
	if !b.seen[ruleID] {
		b.seen[ruleID] = true
		b.rules = append(b.rules, sarifRule{
			ID:               ruleID,
			ShortDescription: sarifMessage{Text: title},
			HelpURI:          helpURI,
			DefaultConfig:    sarifDefaultConfig{Level: level},
		})
	}
	region := sarifRegion{StartLine: line}
	if col != nil {
		region.StartColumn = *col + 1
	}
	res := sarifResult{
		RuleID:  ruleID,
		Level:   level,
		Message: sarifMessage{Text: message},
		Locations: []sarifLocation{{
			PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: b.uri},
				Region:           region,
			},
		}},
	}
	if suggestion != "" {
		res.Fixes = []sarifFix{{Description: sarifMessage{Text: suggestion}}}
	}
	b.results = append(b.results, res)
}

func buildSARIF(report *Report) sarifLog {
	r := &report.Result
	b := &sarifBuilder{uri: report.Source, seen: map[string]bool{}, results: []sarifResult{}}

	for _, i := range r.Issues {
		b.add(i.Code, i.Message, i.PEP8SectionURL, "warning", i.Message, i.Suggestion, i.Line, i.Column)
	}
	for _, a := range r.Advisories {
		b.add(a.RuleID, a.Title, "", severityToLevel(string(a.Severity)), a.Explanation, a.Suggestion, a.Line, nil)
	}
	for _, f := range r.Findings {
		b.add(f.RuleID, f.Title, "", severityToLevel(string(f.Severity)), f.Explanation, f.Suggestion, f.Location.Line, f.Location.Column)
	}
	if b.rules == nil {
		b.rules = []sarifRule{}
	}

	return sarifLog{
		Version: "2.1.0",
		Schema:  sarifSchema,
		Runs: []sarifRun{{
			Tool: sarifTool{Driver: sarifDriver{
				Name:    report.Tool,
				Version: report.Version,
				Rules:   b.rules,
			}},
			Results: b.results,
		}},
	}
}

// severityToLevel maps finding and advisory severities to SARIF levels.
func severityToLevel(s string) string {
	switch s {
	case "violation":
		return "error"
	case "warning":
		return "warning"
	}
	return "note"
}
