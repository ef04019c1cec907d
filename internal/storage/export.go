package storage

import (
	"encoding/json"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/san-kum/dpendulum/internal/sim"
)

type ExportData struct {
	Run  RunMetadata `json:"run"`
	Rows []sim.Row   `json:"rows"`
}

// ExportJSON writes the metadata and every row of a run as one JSON
// document.
func ExportJSON(w io.Writer, meta RunMetadata, tr *sim.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(ExportData{Run: meta, Rows: tr.Rows()})
}

// ExportCSV writes the rows of tr with a time,theta1,omega1,theta2,omega2
// header.
func ExportCSV(w io.Writer, tr *sim.Trajectory) error {
	return gocsv.Marshal(tr.Rows(), w)
}
