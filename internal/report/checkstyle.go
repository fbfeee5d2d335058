package report

import (
	"encoding/xml"
	"io"

	"detekt/internal/engine"
)

type checkstyleReport struct {
	XMLName xml.Name         `xml:"checkstyle"`
	Version string           `xml:"version,attr"`
	Files   []checkstyleFile `xml:"file"`
}

type checkstyleFile struct {
	Name   string            `xml:"name,attr"`
	Errors []checkstyleError `xml:"error"`
}

type checkstyleError struct {
	Line     int    `xml:"line,attr"`
	Column   int    `xml:"column,attr,omitempty"`
	Severity string `xml:"severity,attr"`
	Message  string `xml:"message,attr"`
	Source   string `xml:"source,attr"`
}

func writeCheckstyle(w io.Writer, result *engine.Detektion) error {
	doc := checkstyleReport{Version: "4.3"}
	for _, f := range openFindings(result.AllFindings()) {
		n := len(doc.Files)
		if n == 0 || doc.Files[n-1].Name != f.Location.Path {
			doc.Files = append(doc.Files, checkstyleFile{Name: f.Location.Path})
			n++
		}
		doc.Files[n-1].Errors = append(doc.Files[n-1].Errors, checkstyleError{
			Line:     f.Location.Line,
			Column:   f.Location.Column,
			Severity: checkstyleSeverity(f.Severity),
			Message:  f.Message,
			Source:   "detekt." + f.RuleID,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func checkstyleSeverity(s engine.Severity) string {
	if s == "" {
		return string(engine.SeverityWarning)
	}
	return string(s)
}
