package report

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"detekt/internal/engine"
	"detekt/internal/version"
)

// SARIF 2.1.0 schema types
// See: https://docs.oasis-open.org/sarif/sarif/v2.1.0/sarif-v2.1.0.html

const sarifSchema = "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json"

// SARIFReport is the top-level SARIF document.
type SARIFReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []SARIFRun `json:"runs"`
}

// SARIFRun represents a single analysis run.
type SARIFRun struct {
	Tool               SARIFTool                        `json:"tool"`
	AutomationDetails  *SARIFAutomationDetails          `json:"automationDetails,omitempty"`
	OriginalURIBaseIDs map[string]SARIFArtifactLocation `json:"originalUriBaseIds,omitempty"`
	Results            []SARIFResult                    `json:"results"`
	Invocations        []SARIFInvocation                `json:"invocations,omitempty"`
}

// SARIFAutomationDetails identifies the run.
type SARIFAutomationDetails struct {
	ID   string `json:"id,omitempty"`
	GUID string `json:"guid,omitempty"`
}

// SARIFTool describes the analysis tool.
type SARIFTool struct {
	Driver SARIFDriver `json:"driver"`
}

// SARIFDriver describes the primary analysis component.
type SARIFDriver struct {
	Name            string      `json:"name"`
	Version         string      `json:"version,omitempty"`
	InformationURI  string      `json:"informationUri,omitempty"`
	Rules           []SARIFRule `json:"rules,omitempty"`
	SemanticVersion string      `json:"semanticVersion,omitempty"`
}

// SARIFRule describes a rule that detected an issue.
type SARIFRule struct {
	ID                   string                  `json:"id"`
	Name                 string                  `json:"name,omitempty"`
	ShortDescription     *SARIFMessage           `json:"shortDescription,omitempty"`
	DefaultConfiguration *SARIFRuleConfiguration `json:"defaultConfiguration,omitempty"`
	HelpURI              string                  `json:"helpUri,omitempty"`
}

// SARIFRuleConfiguration describes the default configuration for a rule.
type SARIFRuleConfiguration struct {
	Level string `json:"level,omitempty"` // error, warning, note, none
}

// SARIFResult represents a single finding.
type SARIFResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level,omitempty"`
	Message             SARIFMessage      `json:"message"`
	Locations           []SARIFLocation   `json:"locations,omitempty"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

// SARIFMessage contains text in various formats.
type SARIFMessage struct {
	Text string `json:"text,omitempty"`
}

// SARIFLocation describes where a result was found.
type SARIFLocation struct {
	PhysicalLocation *SARIFPhysicalLocation `json:"physicalLocation,omitempty"`
}

// SARIFPhysicalLocation identifies a file and region.
type SARIFPhysicalLocation struct {
	ArtifactLocation *SARIFArtifactLocation `json:"artifactLocation,omitempty"`
	Region           *SARIFRegion           `json:"region,omitempty"`
}

// SARIFArtifactLocation identifies a file.
type SARIFArtifactLocation struct {
	URI       string `json:"uri,omitempty"`
	URIBaseID string `json:"uriBaseId,omitempty"`
}

// SARIFRegion identifies a region within a file.
type SARIFRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

// SARIFInvocation describes a single invocation of the tool.
type SARIFInvocation struct {
	ExecutionSuccessful bool   `json:"executionSuccessful"`
	Machine             string `json:"machine,omitempty"`
}

func writeSARIF(w io.Writer, result *engine.Detektion, runID, projectRoot string) error {
	findings := openFindings(result.AllFindings())

	// rules in order of first appearance
	var rules []SARIFRule
	ruleIndex := make(map[string]int)
	for _, f := range findings {
		id := sarifRuleID(f)
		if _, ok := ruleIndex[id]; ok {
			continue
		}
		ruleIndex[id] = len(rules)
		rules = append(rules, SARIFRule{
			ID:   id,
			Name: f.RuleID,
			ShortDescription: &SARIFMessage{
				Text: f.RuleID + " from the " + f.RuleSet + " rule set",
			},
			DefaultConfiguration: &SARIFRuleConfiguration{Level: sarifLevel(f.Severity)},
			HelpURI:              "https://detekt.dev/docs/rules/" + f.RuleSet,
		})
	}

	results := make([]SARIFResult, 0, len(findings))
	for _, f := range findings {
		id := sarifRuleID(f)
		results = append(results, SARIFResult{
			RuleID:    id,
			RuleIndex: ruleIndex[id],
			Level:     sarifLevel(f.Severity),
			Message:   SARIFMessage{Text: f.Message},
			Locations: []SARIFLocation{{
				PhysicalLocation: &SARIFPhysicalLocation{
					ArtifactLocation: &SARIFArtifactLocation{URI: f.Location.Path, URIBaseID: "%SRCROOT%"},
					Region:           &SARIFRegion{StartLine: f.Location.Line, StartColumn: f.Location.Column},
				},
			}},
			PartialFingerprints: map[string]string{"detekt/v1": fingerprint(f)},
		})
	}

	run := SARIFRun{
		Tool: SARIFTool{Driver: SARIFDriver{
			Name:            version.Name,
			Version:         version.Version,
			SemanticVersion: version.Version,
			InformationURI:  "https://detekt.dev",
			Rules:           rules,
		}},
		Results: results,
		Invocations: []SARIFInvocation{{
			ExecutionSuccessful: true,
			Machine:             runtime.GOOS + "/" + runtime.GOARCH,
		}},
	}
	if runID != "" {
		run.AutomationDetails = &SARIFAutomationDetails{ID: "detekt/" + runID, GUID: runID}
	}
	if projectRoot != "" {
		run.OriginalURIBaseIDs = map[string]SARIFArtifactLocation{"%SRCROOT%": {URI: fileURI(projectRoot)}}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(SARIFReport{Schema: sarifSchema, Version: "2.1.0", Runs: []SARIFRun{run}})
}

func sarifRuleID(f engine.Finding) string {
	return "detekt." + f.RuleSet + "." + f.RuleID
}

func sarifLevel(s engine.Severity) string {
	switch s {
	case engine.SeverityError:
		return "error"
	case engine.SeverityInfo:
		return "note"
	default:
		return "warning"
	}
}

// fingerprint is stable across line moves; it hashes the baseline id.
func fingerprint(f engine.Finding) string {
	hash := sha256.Sum256([]byte(f.BaselineID()))
	return hex.EncodeToString(hash[:])[:16]
}

func fileURI(root string) string {
	p := filepath.ToSlash(root)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if !strings.HasSuffix(p, "/") {
		p += "/"
	}
	return "file://" + p
}
