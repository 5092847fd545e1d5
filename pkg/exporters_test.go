package pkg

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hansbonini/gdtools/pkg/gdrom"
	"gopkg.in/yaml.v3"
)

// mixedTOC is a two track session: audio track 1, data track 2.
func mixedTOC() *gdrom.TOC {
	toc := &gdrom.TOC{}
	toc.Entries[0] = gdrom.MakeTOCEntry(0, 1, 150)
	toc.Entries[1] = gdrom.MakeTOCEntry(4, 1, 11700)
	toc.First = gdrom.MakeTrackWord(0, 1, 1)
	toc.Last = gdrom.MakeTrackWord(4, 1, 2)
	toc.LeadOut = gdrom.MakeTOCEntry(4, 1, 20000)
	return toc
}

func TestBuildReport(t *testing.T) {
	report := NewTOCExporter().BuildReport(mixedTOC(), 0)

	if report.FirstTrack != 1 || report.LastTrack != 2 {
		t.Errorf("tracks %d-%d, want 1-2", report.FirstTrack, report.LastTrack)
	}
	if report.LeadOut != 20000 || report.LeadOutMSF != "04:26:50" {
		t.Errorf("LeadOut = %d (%s)", report.LeadOut, report.LeadOutMSF)
	}
	if report.DataTrack != 11700 {
		t.Errorf("DataTrack = %d, want 11700", report.DataTrack)
	}

	want := []TrackReport{
		{Number: 1, Type: "audio", Ctrl: 0, ADR: 1, LBA: 150, MSF: "00:02:00"},
		{Number: 2, Type: "data", Ctrl: 4, ADR: 1, LBA: 11700, MSF: "02:36:00"},
	}
	if len(report.Tracks) != len(want) {
		t.Fatalf("got %d tracks, want %d", len(report.Tracks), len(want))
	}
	for i := range want {
		if report.Tracks[i] != want[i] {
			t.Errorf("track %d = %+v, want %+v", i+1, report.Tracks[i], want[i])
		}
	}
}

func TestBuildReport_InvalidRange(t *testing.T) {
	toc := mixedTOC()
	toc.First = gdrom.MakeTrackWord(0, 1, 3)

	report := NewTOCExporter().BuildReport(toc, 0)
	if len(report.Tracks) != 0 || report.DataTrack != 0 {
		t.Errorf("inverted range should yield no tracks, got %+v", report)
	}
}

func TestExportYAML(t *testing.T) {
	exporter := NewTOCExporter()
	var buf bytes.Buffer

	if err := exporter.ExportYAML(exporter.BuildReport(mixedTOC(), 1), &buf); err != nil {
		t.Fatalf("ExportYAML() failed: %v", err)
	}

	output := buf.String()
	for _, want := range []string{"session: 1", "data_track_lba: 11700", "lead_out: 20000", "type: data"} {
		if !strings.Contains(output, want) {
			t.Errorf("YAML output should contain %q, got:\n%s", want, output)
		}
	}

	var decoded TOCReport
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("exported YAML does not parse: %v", err)
	}
	if len(decoded.Tracks) != 2 || decoded.Tracks[1].LBA != 11700 {
		t.Errorf("decoded tracks = %+v", decoded.Tracks)
	}
}

func TestExportBinary_DecodeTOC(t *testing.T) {
	toc := mixedTOC()
	var buf bytes.Buffer

	if err := NewTOCExporter().ExportBinary(toc, &buf); err != nil {
		t.Fatalf("ExportBinary() failed: %v", err)
	}
	if buf.Len() != 4*(gdrom.MaxTracks+3) {
		t.Fatalf("binary TOC is %d bytes, want %d", buf.Len(), 4*(gdrom.MaxTracks+3))
	}
	// Entry 1 is little-endian: lba 150, adr 1, ctrl 0
	if got := buf.Bytes()[:4]; !bytes.Equal(got, []byte{0x96, 0x00, 0x00, 0x01}) {
		t.Errorf("first entry = % x", got)
	}

	decoded, err := NewDiscDecoder().DecodeTOC(&buf)
	if err != nil {
		t.Fatalf("DecodeTOC() failed: %v", err)
	}
	if *decoded != *toc {
		t.Error("DecodeTOC() did not reproduce the exported TOC")
	}
}

func TestExportTOCFile(t *testing.T) {
	exporter := NewTOCExporter()
	out := filepath.Join(t.TempDir(), "nested", "toc.yaml")

	if err := exporter.ExportTOCFile(exporter.BuildReport(mixedTOC(), 0), out); err != nil {
		t.Fatalf("ExportTOCFile() failed: %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("Failed to read exported file: %v", err)
	}
	if !strings.Contains(string(data), "first_track: 1") {
		t.Errorf("exported file content:\n%s", data)
	}

	dump := filepath.Join(t.TempDir(), "toc.bin")
	if err := exporter.ExportTOCDump(mixedTOC(), dump); err != nil {
		t.Fatalf("ExportTOCDump() failed: %v", err)
	}
	info, err := os.Stat(dump)
	if err != nil {
		t.Fatalf("Stat() failed: %v", err)
	}
	if info.Size() != 4*(gdrom.MaxTracks+3) {
		t.Errorf("dump size = %d", info.Size())
	}
}

func TestProcessorImplementsInterfaces(t *testing.T) {
	var _ DiscDecoder = NewDiscDecoder()
	var _ TOCExporter = NewTOCExporter()
	var _ DiscDecoder = &DriveProcessor{DiscFileDecoder: NewDiscDecoder()}
	var _ TOCExporter = &DriveProcessor{TOCFileExporter: NewTOCExporter()}
}
