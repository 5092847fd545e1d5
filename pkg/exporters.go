// Package pkg provides the drive processor used by the gdtools CLI.
// This file contains exporters for writing a TOC as YAML or as a raw dump.
package pkg

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/gdrom"
	"gopkg.in/yaml.v3"
)

// TOCFileExporter implements the TOCExporter interface
type TOCFileExporter struct{}

// NewTOCExporter creates a new TOC exporter instance.
func NewTOCExporter() *TOCFileExporter {
	return &TOCFileExporter{}
}

// BuildReport decodes the packed TOC of a session into a report. Tracks
// outside the first..last range are left out.
func (e *TOCFileExporter) BuildReport(toc *gdrom.TOC, session int) *TOCReport {
	report := &TOCReport{
		Session:    session,
		FirstTrack: toc.First.Track(),
		LastTrack:  toc.Last.Track(),
		LeadOut:    toc.LeadOut.LBA(),
		LeadOutMSF: common.FramesToMSF(toc.LeadOut.LBA()),
		DataTrack:  toc.LocateDataTrack(),
	}

	for _, track := range toc.Tracks() {
		kind := "audio"
		if track.IsData() {
			kind = "data"
		}
		report.Tracks = append(report.Tracks, TrackReport{
			Number: track.Number,
			Type:   kind,
			Ctrl:   track.Ctrl,
			ADR:    track.ADR,
			LBA:    track.LBA,
			MSF:    common.FramesToMSF(track.LBA),
		})
	}
	return report
}

// ExportYAML writes a TOC report as YAML.
func (e *TOCFileExporter) ExportYAML(report *TOCReport, writer io.Writer) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)

	if err := encoder.Encode(report); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return encoder.Close()
}

// ExportBinary writes the TOC in the controller's memory layout, the format
// DecodeTOC reads back.
func (e *TOCFileExporter) ExportBinary(toc *gdrom.TOC, writer io.Writer) error {
	for _, entry := range toc.Entries {
		if err := common.WriteUint32LE(writer, uint32(entry)); err != nil {
			return err
		}
	}
	for _, word := range []gdrom.TOCEntry{toc.First, toc.Last, toc.LeadOut} {
		if err := common.WriteUint32LE(writer, uint32(word)); err != nil {
			return err
		}
	}
	return nil
}

// ExportTOCFile writes a report to a YAML file, creating parent directories.
func (e *TOCFileExporter) ExportTOCFile(report *TOCReport, outputFile string) error {
	if err := os.MkdirAll(filepath.Dir(outputFile), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputFile) // #nosec G304 - path comes from the user
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutput, err)
	}
	defer file.Close()

	if err := e.ExportYAML(report, file); err != nil {
		return common.FormatError(common.ErrFailedToWriteOutput, err)
	}

	common.LogInfo(common.InfoTOCExported, len(report.Tracks), outputFile)
	return nil
}

// ExportTOCDump writes the raw TOC words to a file.
func (e *TOCFileExporter) ExportTOCDump(toc *gdrom.TOC, outputFile string) error {
	file, err := os.Create(outputFile) // #nosec G304 - path comes from the user
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutput, err)
	}
	defer file.Close()

	if err := e.ExportBinary(toc, file); err != nil {
		return common.FormatError(common.ErrFailedToWriteOutput, err)
	}
	return nil
}
