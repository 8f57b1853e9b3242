// Command oloeq applies a three-band parametric equalizer to a WAV file
// or prints the magnitude response of a parameter set.
package main

import (
	"fmt"
	"math"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	log "github.com/sirupsen/logrus"

	"github.com/AidenCarrera/OloEQ/eq"
)

var version = "0.1.0"

// CLI defines the command-line interface.
type CLI struct {
	Input  string `arg:"" optional:"" type:"existingfile" help:"Input WAV file"`
	Output string `short:"o" default:"out.wav" help:"Output WAV file"`

	LowCutFreq   float64 `default:"20" help:"Low-cut frequency in Hz"`
	LowCutSlope  int     `default:"12" enum:"12,24,36,48" help:"Low-cut slope in dB/Oct"`
	HighCutFreq  float64 `default:"20000" help:"High-cut frequency in Hz"`
	HighCutSlope int     `default:"12" enum:"12,24,36,48" help:"High-cut slope in dB/Oct"`
	PeakFreq     float64 `default:"750" help:"Peak band center frequency in Hz"`
	PeakGain     float64 `default:"0" help:"Peak band gain in dB"`
	PeakQ        float64 `default:"1" help:"Peak band quality factor"`

	BlockSize int  `default:"512" help:"Processing block size in samples"`
	Response  bool `short:"r" help:"Print the response curve instead of processing audio"`
	Points    int  `default:"32" help:"Number of response curve points"`

	Verbose bool `short:"v" help:"Enable debug logging"`
	Version bool `help:"Show version information"`
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("oloeq"),
		kong.Description("Three-band parametric equalizer for WAV files"),
		kong.UsageOnError(),
	)

	if cli.Version {
		fmt.Println("oloeq", version)
		os.Exit(0)
	}

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if cli.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	proc := eq.NewProcessor()
	if err := applyParams(proc.Params(), cli); err != nil {
		log.Fatal(err)
	}

	if cli.Response {
		printResponse(proc.Snapshot(), cli.Points)
		return
	}

	if cli.Input == "" {
		fmt.Fprintln(os.Stderr, "oloeq: no input file (use --response to print a curve without audio)")
		ctx.PrintUsage(false)
		os.Exit(1)
	}

	if err := processFile(proc, cli); err != nil {
		log.Fatal(err)
	}
}

func applyParams(store *eq.Store, cli *CLI) error {
	lowSlope, err := eq.SlopeFromDBPerOctave(cli.LowCutSlope)
	if err != nil {
		return err
	}
	highSlope, err := eq.SlopeFromDBPerOctave(cli.HighCutSlope)
	if err != nil {
		return err
	}

	store.Set(eq.ParamLowCutFreq, cli.LowCutFreq)
	store.Set(eq.ParamLowCutSlope, float64(lowSlope))
	store.Set(eq.ParamHighCutFreq, cli.HighCutFreq)
	store.Set(eq.ParamHighCutSlope, float64(highSlope))
	store.Set(eq.ParamPeakFreq, cli.PeakFreq)
	store.Set(eq.ParamPeakGain, cli.PeakGain)
	store.Set(eq.ParamPeakQuality, cli.PeakQ)

	return nil
}

func printResponse(s eq.Settings, points int) {
	const sampleRate = 48000.0

	freqs, mags := eq.ResponseCurve(s, sampleRate, points)
	for i := range freqs {
		fmt.Printf("%10.1f Hz  %+7.2f dB\n", freqs[i], mags[i])
	}
}

func processFile(proc *eq.Processor, cli *CLI) error {
	in, err := os.Open(cli.Input)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer in.Close()

	dec := wav.NewDecoder(in)
	if !dec.IsValidFile() {
		return fmt.Errorf("%s: not a valid WAV file", cli.Input)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return fmt.Errorf("decode %s: %w", cli.Input, err)
	}

	sampleRate := float64(buf.Format.SampleRate)
	channels := buf.Format.NumChannels
	if channels < 1 || channels > 2 {
		return fmt.Errorf("%s: unsupported channel count %d", cli.Input, channels)
	}

	frames := len(buf.Data) / channels
	log.WithFields(log.Fields{
		"file":       cli.Input,
		"sampleRate": sampleRate,
		"channels":   channels,
		"frames":     frames,
	}).Debug("oloeq: input decoded")

	if err := proc.Prepare(sampleRate, cli.BlockSize); err != nil {
		return err
	}

	// Deinterleave to float, process in blocks, reinterleave.
	fullScale := float64(int(1) << (dec.BitDepth - 1))
	left := make([]float64, frames)
	right := make([]float64, frames)
	for i := 0; i < frames; i++ {
		left[i] = float64(buf.Data[i*channels]) / fullScale
		if channels == 2 {
			right[i] = float64(buf.Data[i*channels+1]) / fullScale
		} else {
			right[i] = left[i]
		}
	}

	for i := 0; i < frames; i += cli.BlockSize {
		end := i + cli.BlockSize
		if end > frames {
			end = frames
		}
		proc.ProcessBlock(left[i:end], right[i:end])
	}

	for i := 0; i < frames; i++ {
		buf.Data[i*channels] = clipToInt(left[i], fullScale)
		if channels == 2 {
			buf.Data[i*channels+1] = clipToInt(right[i], fullScale)
		}
	}

	return writeWAV(cli.Output, buf, int(dec.BitDepth))
}

func clipToInt(v, fullScale float64) int {
	scaled := math.Round(v * fullScale)
	limit := fullScale - 1
	if scaled > limit {
		scaled = limit
	}
	if scaled < -fullScale {
		scaled = -fullScale
	}
	return int(scaled)
}

func writeWAV(path string, buf *audio.IntBuffer, bitDepth int) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	enc := wav.NewEncoder(out, buf.Format.SampleRate, bitDepth, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalize %s: %w", path, err)
	}

	log.WithField("file", path).Info("oloeq: output written")
	return nil
}
