package sim

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/hansbonini/gdtools/pkg/gdrom"
)

func TestInit_NoDisc(t *testing.T) {
	d, _ := newTestRig(t, Options{}, gdrom.Options{}, nil)

	if err := d.Init(context.Background()); !errors.Is(err, gdrom.ErrNoDisc) {
		t.Fatalf("Init() = %v, want ErrNoDisc", err)
	}
}

func TestInit_SpinUp(t *testing.T) {
	d, ctrl := newTestRig(t, Options{SpinUp: 3}, gdrom.Options{}, mustParseDisc(t, testDiscYAML))

	if err := d.Init(context.Background()); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	want := gdrom.DataTypeParams{SectorPart: gdrom.ReadDataArea, CDXA: gdrom.CDXAMode2, SectorSize: 2048}
	if got := ctrl.DataType(); got != want {
		t.Errorf("controller data type = %+v, want %+v", got, want)
	}
	if ctrl.Pending() != 0 {
		t.Errorf("%d requests left pending", ctrl.Pending())
	}
}

func TestReinit_TimesOut(t *testing.T) {
	d, ctrl := newTestRig(t, Options{SpinUp: 1000}, gdrom.Options{InitRetries: 5}, mustParseDisc(t, testDiscYAML))

	if err := d.Reinit(context.Background()); !errors.Is(err, gdrom.ErrAborted) {
		t.Fatalf("Reinit() = %v, want ErrAborted", err)
	}
	if ctrl.Pending() != 0 {
		t.Errorf("%d requests left pending", ctrl.Pending())
	}
}

func TestWrongUnit(t *testing.T) {
	d, _ := newTestRig(t, Options{Unit: gdrom.UnitMaster}, gdrom.Options{Unit: gdrom.UnitSlave}, mustParseDisc(t, testDiscYAML))

	if err := d.Init(context.Background()); !errors.Is(err, gdrom.ErrSystem) {
		t.Fatalf("Init() = %v, want ErrSystem", err)
	}
	if _, _, err := d.Status(context.Background()); !errors.Is(err, gdrom.ErrSystem) {
		t.Fatalf("Status() = %v, want ErrSystem", err)
	}
}

func TestDiscChange(t *testing.T) {
	d, ctrl := newReadyDrive(t, Options{})
	ctx := context.Background()

	if err := ctrl.Insert(mustParseDisc(t, testDiscYAML)); err != nil {
		t.Fatal(err)
	}
	err := d.ReadTOC(ctx, &gdrom.TOC{}, 0)
	if !errors.Is(err, gdrom.ErrDiscChanged) {
		t.Fatalf("ReadTOC() = %v, want ErrDiscChanged", err)
	}
	if gdrom.ErrorCode(err) != gdrom.CodeDiscChg {
		t.Errorf("ErrorCode() = %d, want %d", gdrom.ErrorCode(err), gdrom.CodeDiscChg)
	}

	if err := d.Reinit(ctx); err != nil {
		t.Fatalf("Reinit() failed: %v", err)
	}
	if err := d.ReadTOC(ctx, &gdrom.TOC{}, 0); err != nil {
		t.Fatalf("ReadTOC() after Reinit failed: %v", err)
	}
}

func TestEject(t *testing.T) {
	d, ctrl := newReadyDrive(t, Options{})
	ctrl.Eject()

	if err := d.ReadTOC(context.Background(), &gdrom.TOC{}, 0); !errors.Is(err, gdrom.ErrNoDisc) {
		t.Fatalf("ReadTOC() = %v, want ErrNoDisc", err)
	}
	status, _, err := d.Status(context.Background())
	if err != nil || status != gdrom.StatusOpen {
		t.Errorf("Status() = %v, %v; want open tray", status, err)
	}
}

func TestReadTOC_LocatesDataTrack(t *testing.T) {
	d, _ := newReadyDrive(t, Options{Latency: 3})
	var toc gdrom.TOC

	if err := d.ReadTOC(context.Background(), &toc, 1); err != nil {
		t.Fatalf("ReadTOC() failed: %v", err)
	}
	if got := toc.LocateDataTrack(); got != 45000 {
		t.Errorf("LocateDataTrack() = %d, want 45000", got)
	}
	if err := d.ReadTOC(context.Background(), &toc, 7); !errors.Is(err, gdrom.ErrSystem) {
		t.Errorf("ReadTOC(session 7) = %v, want ErrSystem", err)
	}
}

func TestReadSectors_DataArea(t *testing.T) {
	testCases := []struct {
		name string
		mode gdrom.ReadMode
	}{
		{"pio", gdrom.ReadPIO},
		{"dma", gdrom.ReadDMA},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newReadyDrive(t, Options{Latency: 2})
			buf := make([]byte, 2*2048)

			if err := d.ReadSectorsEx(context.Background(), buf, 45010, 2, tc.mode); err != nil {
				t.Fatalf("ReadSectorsEx() failed: %v", err)
			}
			if !bytes.HasPrefix(buf, []byte("LBA 00045010")) {
				t.Errorf("sector 0 starts with %q", buf[:12])
			}
			if !bytes.HasPrefix(buf[2048:], []byte("LBA 00045011")) {
				t.Errorf("sector 1 starts with %q", buf[2048:2060])
			}
		})
	}
}

func TestReadSectors_WholeSector(t *testing.T) {
	d, _ := newReadyDrive(t, Options{})
	ctx := context.Background()

	if err := d.SetSectorSize(ctx, 2352); err != nil {
		t.Fatalf("SetSectorSize() failed: %v", err)
	}
	buf := make([]byte, 2352)
	if err := d.ReadSectors(ctx, buf, 45000, 1); err != nil {
		t.Fatalf("ReadSectors() failed: %v", err)
	}
	if !bytes.Equal(buf[:12], syncPattern[:]) {
		t.Errorf("sync = % x", buf[:12])
	}
	// 45000 frames is exactly 10:00:00.
	if !bytes.Equal(buf[12:16], []byte{0x10, 0x00, 0x00, 0x02}) {
		t.Errorf("header = % x, want 10 00 00 02", buf[12:16])
	}
	if !bytes.HasPrefix(buf[24:], []byte("LBA 00045000")) {
		t.Errorf("user data starts with %q", buf[24:36])
	}
}

func TestReadSectors_Failures(t *testing.T) {
	d, _ := newReadyDrive(t, Options{})
	ctx := context.Background()

	testCases := []struct {
		name   string
		buf    []byte
		sector int
		count  int
	}{
		{"audio track in data mode", make([]byte, 2048), 150, 1},
		{"outside the disc", make([]byte, 2048), 90000, 1},
		{"runs past the track", make([]byte, 4*2048), 45498, 4},
		{"buffer too small", make([]byte, 2048), 45000, 2},
		{"count overflows buffer size", make([]byte, 2048), 45000, math.MaxInt / 1024},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := d.ReadSectors(ctx, tc.buf, tc.sector, tc.count)
			if !errors.Is(err, gdrom.ErrSystem) {
				t.Fatalf("ReadSectors() = %v, want ErrSystem", err)
			}
			var cerr *gdrom.CommandError
			if !errors.As(err, &cerr) || cerr.Command != gdrom.CmdPIORead {
				t.Errorf("error should name PIOREAD, got %v", err)
			}
		})
	}
}

func TestReadSectors_TrackImage(t *testing.T) {
	dir := t.TempDir()
	image := make([]byte, 2*2352)
	for i := range image {
		image[i] = byte(i/2352 + 1)
	}
	if err := os.WriteFile(filepath.Join(dir, "track01.bin"), image, 0o600); err != nil {
		t.Fatal(err)
	}
	desc := "name: Image\ntype: cdrom\ntracks:\n  - {number: 1, type: data, mode: 1, start: 150, length: 4, file: track01.bin}\n"
	path := filepath.Join(dir, "disc.yaml")
	if err := os.WriteFile(path, []byte(desc), 0o600); err != nil {
		t.Fatal(err)
	}
	disc, err := LoadDisc(path)
	if err != nil {
		t.Fatal(err)
	}

	d, _ := newTestRig(t, Options{}, gdrom.Options{}, disc)
	ctx := context.Background()
	if err := d.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d.DataType().CDXA != gdrom.CDXAMode1 {
		t.Errorf("CD-ROM disc should select mode 1, got %+v", d.DataType())
	}
	if err := d.SetSectorSize(ctx, 2352); err != nil {
		t.Fatal(err)
	}

	buf := make([]byte, 3*2352)
	if err := d.ReadSectors(ctx, buf, 150, 3); err != nil {
		t.Fatalf("ReadSectors() failed: %v", err)
	}
	if buf[0] != 1 || buf[2351] != 1 || buf[2352] != 2 {
		t.Error("sectors 0-1 should come from the image")
	}
	// The image is short, so the third sector is synthesized.
	if !bytes.Equal(buf[2*2352:2*2352+12], syncPattern[:]) {
		t.Error("sector 2 should be synthesized")
	}
}

func TestChangeDataType_Rejected(t *testing.T) {
	d, ctrl := newReadyDrive(t, Options{})
	before := ctrl.DataType()

	if err := d.SetSectorSize(context.Background(), 1000); !errors.Is(err, gdrom.ErrSystem) {
		t.Fatalf("SetSectorSize(1000) = %v, want ErrSystem", err)
	}
	if ctrl.DataType() != before {
		t.Error("rejected data type should not be applied")
	}

	query := gdrom.DataTypeParams{Mode: 1}
	if rv := ctrl.ChangeDataType(&query); rv != 0 || query.SectorSize != before.SectorSize {
		t.Errorf("get data type = %+v (rv %d)", query, rv)
	}
}

func TestSubcode_QChannel(t *testing.T) {
	d, _ := newReadyDrive(t, Options{})
	ctx := context.Background()

	if err := d.ReadSectors(ctx, make([]byte, 2048), 45000, 1); err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 14)
	if err := d.GetSubcode(ctx, buf, gdrom.SubQChannel); err != nil {
		t.Fatalf("GetSubcode() failed: %v", err)
	}

	want := []byte{
		0x00, gdrom.SubAudioNoInfo, 0x00, 14,
		0x41, 0x03, 0x01, 0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x00,
	}
	if !bytes.Equal(buf, want) {
		t.Errorf("subcode = % x\nwant      % x", buf, want)
	}
}

func TestSubcode_QAllCarriesQBits(t *testing.T) {
	d, _ := newReadyDrive(t, Options{})
	ctx := context.Background()

	q := make([]byte, 14)
	all := make([]byte, 100)
	if err := d.GetSubcode(ctx, q, gdrom.SubQChannel); err != nil {
		t.Fatal(err)
	}
	if err := d.GetSubcode(ctx, all, gdrom.SubQAll); err != nil {
		t.Fatal(err)
	}
	if binary.BigEndian.Uint16(all[2:4]) != 100 {
		t.Errorf("length = %d, want 100", binary.BigEndian.Uint16(all[2:4]))
	}

	for i := 0; i < 80; i++ {
		bit := q[4+i/8]&(0x80>>(i%8)) != 0
		if got := all[4+i]&0x40 != 0; got != bit {
			t.Fatalf("Q bit %d = %v, want %v", i, got, bit)
		}
	}
}

func TestSubcode_CatalogAndISRC(t *testing.T) {
	d, _ := newReadyDrive(t, Options{})
	ctx := context.Background()

	buf := make([]byte, 24)
	if err := d.GetSubcode(ctx, buf, gdrom.SubMediaCatalog); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf[4:], []byte("4988001234567")) {
		t.Errorf("catalog = %q", buf[4:])
	}

	// After Init the head rests on track 1.
	if err := d.GetSubcode(ctx, buf, gdrom.SubTrackISRC); err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(buf[4:], []byte("JPXX02500001")) {
		t.Errorf("ISRC = %q", buf[4:])
	}

	if err := d.GetSubcode(ctx, make([]byte, 8), gdrom.SubMediaCatalog); !errors.Is(err, gdrom.ErrSystem) {
		t.Errorf("short buffer = %v, want ErrSystem", err)
	}
	if err := d.GetSubcode(ctx, buf, 9); !errors.Is(err, gdrom.ErrSystem) {
		t.Errorf("unknown selector = %v, want ErrSystem", err)
	}
}

func audioStatus(t *testing.T, d *gdrom.Drive) byte {
	t.Helper()
	buf := make([]byte, 14)
	if err := d.GetSubcode(context.Background(), buf, gdrom.SubQChannel); err != nil {
		t.Fatalf("GetSubcode() failed: %v", err)
	}
	return buf[1]
}

func driveStatus(t *testing.T, d *gdrom.Drive) gdrom.DriveStatus {
	t.Helper()
	status, _, err := d.Status(context.Background())
	if err != nil {
		t.Fatalf("Status() failed: %v", err)
	}
	return status
}

func TestCDDA_Controls(t *testing.T) {
	d, _ := newReadyDrive(t, Options{PlayStep: 1})
	ctx := context.Background()

	if err := d.CDDAPlay(ctx, 1, 2, 0, gdrom.CDDATracks); err != nil {
		t.Fatalf("CDDAPlay() failed: %v", err)
	}
	if s := driveStatus(t, d); s != gdrom.StatusPlaying {
		t.Errorf("status = %v, want playing", s)
	}
	if a := audioStatus(t, d); a != gdrom.SubAudioPlaying {
		t.Errorf("audio status = 0x%02x, want playing", a)
	}

	if err := d.CDDAPause(ctx); err != nil {
		t.Fatal(err)
	}
	if a := audioStatus(t, d); a != gdrom.SubAudioPaused {
		t.Errorf("audio status = 0x%02x, want paused", a)
	}

	if err := d.CDDAResume(ctx); err != nil {
		t.Fatal(err)
	}
	if s := driveStatus(t, d); s != gdrom.StatusPlaying {
		t.Errorf("status = %v, want playing", s)
	}

	if err := d.SpinDown(ctx); err != nil {
		t.Fatal(err)
	}
	if s := driveStatus(t, d); s != gdrom.StatusStandby {
		t.Errorf("status = %v, want standby", s)
	}
}

func TestCDDA_PlaysToEnd(t *testing.T) {
	d, _ := newReadyDrive(t, Options{PlayStep: 600})

	if err := d.CDDAPlay(context.Background(), 150, 1150, 0, gdrom.CDDASectors); err != nil {
		t.Fatalf("CDDAPlay() failed: %v", err)
	}
	if a := audioStatus(t, d); a != gdrom.SubAudioPlaying {
		t.Fatalf("audio status = 0x%02x, want playing", a)
	}
	if a := audioStatus(t, d); a != gdrom.SubAudioEnded {
		t.Errorf("audio status = 0x%02x, want ended", a)
	}
	if s := driveStatus(t, d); s != gdrom.StatusStandby {
		t.Errorf("status = %v, want standby", s)
	}
}

func TestCDDA_RepeatsForever(t *testing.T) {
	d, _ := newReadyDrive(t, Options{PlayStep: 600})

	if err := d.CDDAPlay(context.Background(), 1, 1, 20, gdrom.CDDATracks); err != nil {
		t.Fatalf("CDDAPlay() failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if a := audioStatus(t, d); a != gdrom.SubAudioPlaying {
			t.Fatalf("poll %d: audio status = 0x%02x, want playing", i, a)
		}
	}
}

func TestCDDA_Rejected(t *testing.T) {
	d, _ := newReadyDrive(t, Options{})
	ctx := context.Background()

	testCases := []struct {
		name       string
		start, end int
		mode       gdrom.CDDAMode
	}{
		{"data track", 3, 3, gdrom.CDDATracks},
		{"missing track", 1, 9, gdrom.CDDATracks},
		{"reversed range", 2, 1, gdrom.CDDATracks},
		{"sectors outside disc", 90000, 90100, gdrom.CDDASectors},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := d.CDDAPlay(ctx, tc.start, tc.end, 0, tc.mode); !errors.Is(err, gdrom.ErrSystem) {
				t.Errorf("CDDAPlay() = %v, want ErrSystem", err)
			}
		})
	}
}

func TestUnsupportedCommand(t *testing.T) {
	d, _ := newReadyDrive(t, Options{})

	if err := d.Exec(context.Background(), gdrom.CmdSeek, nil); !errors.Is(err, gdrom.ErrSystem) {
		t.Errorf("Exec(SEEK) = %v, want ErrSystem", err)
	}
}

func TestAbortPendingRequest(t *testing.T) {
	ctrl := NewController(Options{Latency: 10})
	if err := ctrl.Insert(mustParseDisc(t, testDiscYAML)); err != nil {
		t.Fatal(err)
	}

	id := ctrl.Submit(gdrom.CmdInit, nil)
	ctrl.Service()
	ctrl.Abort(gdrom.CmdInit)

	var detail gdrom.StatusBlock
	if state := ctrl.Poll(id, &detail); state != gdrom.StateAborted {
		t.Errorf("Poll() = %v, want aborted", state)
	}
	if state := ctrl.Poll(id, &detail); state != gdrom.StateNoActive {
		t.Errorf("second Poll() = %v, want no-active", state)
	}
}

func TestConcurrentDrivers(t *testing.T) {
	d, _ := newReadyDrive(t, Options{Latency: 2})

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			buf := make([]byte, 2048)
			for i := 0; i < 20; i++ {
				lba := 45000 + w*100 + i
				if err := d.ReadSectors(context.Background(), buf, lba, 1); err != nil {
					t.Error(err)
					return
				}
				if want := fmt.Sprintf("LBA %08d", lba); !bytes.HasPrefix(buf, []byte(want)) {
					t.Errorf("read %d returned %q", lba, buf[:12])
				}
			}
		}(w)
	}
	wg.Wait()
}
