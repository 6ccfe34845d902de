// Command ps1 runs the emulator core against a BIOS image and an optional
// disc image, presenting video through Ebitengine and audio through oto.
package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"

	"github.com/ebitengine/oto/v3"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.org/x/image/bmp"

	"github.com/ps1emu/core/internal/emulator"
)

const (
	screenWidth     = 1024
	screenHeight    = 512
	cyclesPerUpdate = 33868800 / 60 // CPU cycles executed per 60Hz frame (33.8688MHz NTSC)
)

var keyBindings = map[ebiten.Key]emulator.Button{
	ebiten.KeyBackspace: emulator.BUTTON_SELECT,
	ebiten.KeyEnter:     emulator.BUTTON_START,
	ebiten.KeyUp:        emulator.BUTTON_DUP,
	ebiten.KeyRight:     emulator.BUTTON_DRIGHT,
	ebiten.KeyDown:      emulator.BUTTON_DDOWN,
	ebiten.KeyLeft:      emulator.BUTTON_DLEFT,
	ebiten.KeyQ:         emulator.BUTTON_L1,
	ebiten.KeyE:         emulator.BUTTON_R1,
	ebiten.Key1:         emulator.BUTTON_L2,
	ebiten.Key3:         emulator.BUTTON_R2,
	ebiten.KeyI:         emulator.BUTTON_TRIANGLE,
	ebiten.KeyL:         emulator.BUTTON_CIRCLE,
	ebiten.KeyK:         emulator.BUTTON_CROSS,
	ebiten.KeyJ:         emulator.BUTTON_SQUARE,
}

type game struct {
	cpu          *emulator.CPU
	renderer     *emulator.EbitenRenderer
	player       *oto.Player
	dumper       *audioDumper
	silentReader *spuReader // drained manually when audio output is disabled
	vramPath     string
}

func newGame(biosPath, discPath, dumpAudioPath, dumpVramPath string, audioCtx *oto.Context) (*game, error) {
	f, err := os.Open(biosPath)
	if err != nil {
		return nil, fmt.Errorf("opening BIOS: %w", err)
	}
	defer f.Close()

	bios, err := emulator.LoadBIOS(f)
	if err != nil {
		return nil, fmt.Errorf("loading BIOS: %w", err)
	}

	inter := emulator.NewInterconnect(bios)
	cpu := emulator.NewCPU(inter)

	if discPath != "" {
		discFile, err := os.Open(discPath)
		if err != nil {
			return nil, fmt.Errorf("opening disc image: %w", err)
		}
		disc, err := emulator.NewDisc(discFile)
		if err != nil {
			return nil, fmt.Errorf("identifying disc: %w", err)
		}
		inter.CdRom.Disc = disc
		log.Printf("loaded disc image %s (%s)", discPath, disc.RegionString())
	}

	g := &game{
		cpu:      cpu,
		renderer: inter.GPU.NewEbitenRenderer(),
		vramPath: dumpVramPath,
	}

	var dumper *audioDumper
	if dumpAudioPath != "" {
		dumper, err = newAudioDumper(dumpAudioPath)
		if err != nil {
			return nil, fmt.Errorf("opening audio dump: %w", err)
		}
		g.dumper = dumper
	}

	if audioCtx != nil || dumper != nil {
		reader := newSpuReader(inter, dumper)
		if audioCtx != nil {
			g.player = audioCtx.NewPlayer(reader)
			g.player.Play()
		} else {
			// nothing is draining the SPU ring via oto; pull it ourselves
			// so the dump still captures audio with -no-audio set
			g.silentReader = reader
		}
	}

	return g, nil
}

func (g *game) Update() error {
	for key, button := range keyBindings {
		state := emulator.BUTTON_STATE_RELEASED
		if ebiten.IsKeyPressed(key) {
			state = emulator.BUTTON_STATE_PRESSED
		}
		g.cpu.Inter.PadMemCard.Pad1.SetButtonState(button, state)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		if err := dumpVRAM(g.cpu.Inter, g.vramPath); err != nil {
			log.Printf("vram dump failed: %v", err)
		}
	}

	for i := 0; i < cyclesPerUpdate; i++ {
		g.cpu.RunNextInstruction()
	}

	if g.silentReader != nil {
		// nobody else is pulling from the SPU ring; drain one frame worth
		// of samples ourselves so -dump-audio still works with -no-audio
		scratch := make([]byte, 4*735) // ~1 frame at 44100Hz/60fps, stereo 16 bit
		g.silentReader.Read(scratch)
	}

	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// spuReader adapts the SPU mixer's stereo 16 bit output to io.Reader for
// oto's player, draining it from inter.SPU.Ring. When a dumper is set, every
// sample handed to oto is also mirrored into the WAV capture.
type spuReader struct {
	inter  *emulator.Interconnect
	dumper *audioDumper
}

func newSpuReader(inter *emulator.Interconnect, dumper *audioDumper) *spuReader {
	return &spuReader{inter: inter, dumper: dumper}
}

func (r *spuReader) Read(p []byte) (int, error) {
	samples := make([]int16, len(p)/2)
	r.inter.SPU.Pop(samples)

	for i, s := range samples {
		p[2*i] = byte(s)
		p[2*i+1] = byte(s >> 8)
	}

	if r.dumper != nil {
		r.dumper.write(samples)
	}

	return len(p), nil
}

// audioDumper captures SPU output to a 16 bit stereo PCM WAV file via
// go-audio/wav, the same library the rest of the pack uses for WAV I/O.
type audioDumper struct {
	file *os.File
	enc  *wav.Encoder
}

func newAudioDumper(path string) (*audioDumper, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	enc := wav.NewEncoder(f, 44100, 16, 2, 1)
	return &audioDumper{file: f, enc: enc}, nil
}

func (d *audioDumper) write(samples []int16) {
	if len(samples) == 0 {
		return
	}

	ints := make([]int, len(samples))
	for i, s := range samples {
		ints[i] = int(s)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 2, SampleRate: 44100},
		Data:           ints,
		SourceBitDepth: 16,
	}
	if err := d.enc.Write(buf); err != nil {
		log.Printf("audio dump write failed: %v", err)
	}
}

func (d *audioDumper) Close() error {
	if err := d.enc.Close(); err != nil {
		d.file.Close()
		return err
	}
	return d.file.Close()
}

// dumpVRAM writes the full 1024x512 VRAM buffer to disk. Without an
// explicit -dump-vram path it writes a PNG (via F12); with one, it writes
// a BMP through golang.org/x/image/bmp instead, to the given path.
func dumpVRAM(inter *emulator.Interconnect, bmpPath string) error {
	img := image.NewRGBA(image.Rect(0, 0, 1024, 512))
	for y := 0; y < 512; y++ {
		for x := 0; x < 1024; x++ {
			px := inter.GPU.VRAM.Get(uint16(x), uint16(y))
			r := uint8((px & 0x1f) << 3)
			g := uint8(((px >> 5) & 0x1f) << 3)
			b := uint8(((px >> 10) & 0x1f) << 3)
			img.Set(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}

	if bmpPath != "" {
		f, err := os.Create(bmpPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return bmp.Encode(f, img)
	}

	f, err := os.Create("vram.png")
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func main() {
	biosPath := flag.String("bios", "", "path to a 512KB BIOS image")
	discPath := flag.String("disc", "", "path to a .bin disc image")
	noAudio := flag.Bool("no-audio", false, "disable audio output")
	dumpAudioPath := flag.String("dump-audio", "", "capture SPU output to a WAV file at this path")
	dumpVramPath := flag.String("dump-vram", "", "write VRAM to a BMP file at this path on exit and on F12")
	flag.Parse()

	if *biosPath == "" {
		fmt.Fprintln(os.Stderr, "usage: ps1 -bios <path> [-disc <path>]")
		os.Exit(1)
	}

	var audioCtx *oto.Context
	if !*noAudio {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   44100,
			ChannelCount: 2,
			Format:       oto.FormatSignedInt16LE,
		})
		if err != nil {
			log.Printf("audio disabled: %v", err)
		} else {
			<-ready
			audioCtx = ctx
		}
	}

	g, err := newGame(*biosPath, *discPath, *dumpAudioPath, *dumpVramPath, audioCtx)
	if err != nil {
		log.Fatal(err)
	}
	if g.dumper != nil {
		defer g.dumper.Close()
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("ps1")
	runErr := ebiten.RunGame(g)

	if *dumpVramPath != "" {
		if err := dumpVRAM(g.cpu.Inter, *dumpVramPath); err != nil {
			log.Printf("vram dump failed: %v", err)
		}
	}

	if runErr != nil {
		log.Fatal(runErr)
	}
}
