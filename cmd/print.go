package cmd

import (
	"fmt"
	"io"

	"github.com/hansbonini/gdtools/pkg"
	"github.com/hansbonini/gdtools/pkg/gdrom"
)

var subcodeNames = map[string]int{
	"all":     gdrom.SubQAll,
	"q":       gdrom.SubQChannel,
	"catalog": gdrom.SubMediaCatalog,
	"isrc":    gdrom.SubTrackISRC,
}

// parseSubcode maps a channel name to its GETSCD selector.
func parseSubcode(name string) (int, error) {
	which, ok := subcodeNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown subcode channel %q (want q, all, catalog or isrc)", name)
	}
	return which, nil
}

func sectorPartName(part int) string {
	switch part {
	case gdrom.ReadWholeSector:
		return "whole sector"
	case gdrom.ReadDataArea:
		return "data area"
	default:
		return fmt.Sprintf("part(0x%04x)", part)
	}
}

func printStatus(w io.Writer, report *pkg.StatusReport) {
	fmt.Fprintf(w, "Status:      %s\n", report.Status)
	fmt.Fprintf(w, "Disc type:   %s\n", report.Disc)
	dt := report.DataType
	fmt.Fprintf(w, "Data type:   %s, CD-XA %d, %d bytes/sector\n", sectorPartName(dt.SectorPart), dt.CDXA, dt.SectorSize)
}

func printSubcode(w io.Writer, report *pkg.SubcodeReport) {
	fmt.Fprintf(w, "Audio:       %s\n", gdrom.AudioStatusString(report.AudioStatus))
	switch report.Which {
	case gdrom.SubQAll, gdrom.SubQChannel:
		if report.Track == 0xaa {
			fmt.Fprintf(w, "Track:       lead-out\n")
		} else {
			fmt.Fprintf(w, "Track:       %02d index %02d\n", report.Track, report.Index)
			fmt.Fprintf(w, "Relative:    %s\n", report.Relative)
		}
		fmt.Fprintf(w, "Absolute:    %s\n", report.Absolute)
		fmt.Fprintf(w, "Control:     0x%x\n", report.Control)
	case gdrom.SubMediaCatalog:
		fmt.Fprintf(w, "Catalog:     %s\n", report.Catalog)
	case gdrom.SubTrackISRC:
		fmt.Fprintf(w, "ISRC:        %s\n", report.ISRC)
	}
}

func printTOC(w io.Writer, report *pkg.TOCReport) {
	fmt.Fprintf(w, "Session %d: tracks %d-%d, lead-out %d (%s)\n",
		report.Session, report.FirstTrack, report.LastTrack, report.LeadOut, report.LeadOutMSF)
	for _, t := range report.Tracks {
		fmt.Fprintf(w, "  %02d  %-5s  ctrl=%x adr=%x  lba=%-7d %s\n", t.Number, t.Type, t.Ctrl, t.ADR, t.LBA, t.MSF)
	}
	if report.DataTrack != 0 {
		fmt.Fprintf(w, "Data track at %d\n", report.DataTrack)
	}
}
