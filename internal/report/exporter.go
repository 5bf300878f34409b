package report

import (
	"encoding/json"
	"fmt"

	"immofin-backend/internal/domain/dossier"
)

// Artifact is the opaque downloadable produced by an exporter. The
// core never inspects Content beyond handing it to the transport.
type Artifact struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Exporter renders a valid StructuredReport into a downloadable
// artifact. Rendering details (PDF, JSON, anything else) are outside
// the core; the generator knows nothing about them.
type Exporter interface {
	Export(r *dossier.StructuredReport, displayLabel string) (*Artifact, error)
}

// JSONExporter is the built-in exporter: the report serialized as-is.
type JSONExporter struct{}

func (JSONExporter) Export(r *dossier.StructuredReport, displayLabel string) (*Artifact, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("report for %q is not valid, regenerate it first", displayLabel)
	}
	body, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Filename:    fmt.Sprintf("rapport-%s.json", shortID(r.Meta.DossierID)),
		ContentType: "application/json",
		Content:     body,
	}, nil
}
