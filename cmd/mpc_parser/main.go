// Command-line entry point for the MPC observation codec.
//
// Note about input formats
// ------------------------
// Observation files are line oriented: 80-column MPC optical records,
// optionally followed by a survey comment beyond column 81, plus
// standalone '#'-marked comment lines that describe the record after
// them. Several historical comment layouts (fixed OSSOS, split OSSOS,
// CFEPS, TNOdb) are autodetected; use -all to keep null observations
// in the extract output.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ijiraq/MainBeltComets/internal/convert"
	"github.com/ijiraq/MainBeltComets/internal/mpc"
)

// ExtractOut is one parsed record in the JSON output.
type ExtractOut struct {
	ProvisionalName string       `json:"provisional_name"`
	Date            string       `json:"date"`
	JD              float64      `json:"jd"`
	RADeg           float64      `json:"ra_deg"`
	DecDeg          float64      `json:"dec_deg"`
	Mag             *float64     `json:"mag,omitempty"`
	Band            string       `json:"band,omitempty"`
	ObservatoryCode string       `json:"observatory_code"`
	Discovery       bool         `json:"discovery"`
	Null            bool         `json:"null_observation"`
	Comment         *mpc.Comment `json:"comment,omitempty"`
	Line            string       `json:"line"`
}

type Stats struct {
	Lines    int
	Records  int
	Comments int
	Nulls    int
	Skipped  int
	Emitted  int
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "mpc_parser - commands:")
	fmt.Fprintln(w, "  extract  - parse an MPC observation file and output JSON")
	fmt.Fprintln(w, "  convert  - convert MPC observation files to TNOdb input files")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  mpc_parser extract [-input obs.mpc] [-output out.json] [-pretty] [-all] [-stats]")
	fmt.Fprintln(w, "  mpc_parser convert -input obs.mpc [-output obs.tnodb]")
	fmt.Fprintln(w, "  mpc_parser convert -dir /path/to/tracking/files")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - extract reads stdin when -input is omitted.")
	fmt.Fprintln(w, "  - convert -dir picks up .mpc, .track, .checkup and .nailing files.")
	fmt.Fprintln(w, "")
}

func main() {
	if len(os.Args) < 2 {
		usage(os.Stderr)
		os.Exit(2)
	}
	cmd := strings.ToLower(os.Args[1])
	switch cmd {
	case "extract":
		runExtract(os.Args[2:])
	case "convert":
		runConvert(os.Args[2:])
	case "-h", "--help", "help":
		usage(os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage(os.Stderr)
		os.Exit(2)
	}
}

func runExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	inPath := fs.String("input", "", "Input MPC file (default: stdin)")
	outPath := fs.String("output", "", "Output JSON file (default: stdout)")
	pretty := fs.Bool("pretty", false, "Pretty-print JSON output")
	includeAll := fs.Bool("all", false, "Include null observations")
	showStats := fs.Bool("stats", false, "Print basic counters to stderr")
	_ = fs.Parse(args)

	var r io.Reader = os.Stdin
	if *inPath != "" {
		f, err := os.Open(*inPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open input: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	out := make([]ExtractOut, 0, 1024)
	st := &Stats{}
	var held *mpc.Comment

	for scanner.Scan() {
		st.Lines++
		line := scanner.Text()

		obs, comment, err := mpc.ParseObservation(line)
		if err != nil {
			st.Skipped++
			continue
		}
		if comment != nil {
			st.Comments++
			held = comment
			continue
		}
		if obs == nil {
			continue
		}
		st.Records++
		if held != nil {
			if obs.Comment == nil {
				obs.Comment = held
			}
			held = nil
		}
		if obs.Null.IsNull {
			st.Nulls++
			if !*includeAll {
				continue
			}
		}
		out = append(out, extractOut(obs, line))
		st.Emitted++
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Input read error: %v\n", err)
		os.Exit(1)
	}

	var wout io.Writer = os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		wout = f
	}

	enc, err := marshalJSON(out, *pretty)
	if err != nil {
		fmt.Fprintf(os.Stderr, "JSON encode error: %v\n", err)
		os.Exit(1)
	}
	_, _ = wout.Write(enc)
	if wout == os.Stdout {
		_, _ = wout.Write([]byte("\n"))
	}

	if *showStats {
		fmt.Fprintf(os.Stderr,
			"stats: lines=%d records=%d comments=%d nulls=%d skipped=%d emitted=%d\n",
			st.Lines, st.Records, st.Comments, st.Nulls, st.Skipped, st.Emitted,
		)
	}
}

func extractOut(obs *mpc.Observation, line string) ExtractOut {
	return ExtractOut{
		ProvisionalName: obs.ProvisionalName,
		Date:            obs.Date().String(),
		JD:              obs.Date().JD,
		RADeg:           obs.RA(),
		DecDeg:          obs.Dec(),
		Mag:             obs.Mag(),
		Band:            obs.Band,
		ObservatoryCode: obs.ObservatoryCode,
		Discovery:       obs.Discovery.IsDiscovery,
		Null:            obs.Null.IsNull,
		Comment:         obs.Comment,
		Line:            line,
	}
}

func marshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}

func runConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	inPath := fs.String("input", "", "Input MPC file")
	outPath := fs.String("output", "", "Output TNOdb file (default: input with .tnodb extension)")
	dir := fs.String("dir", "", "Convert every tracking file in this directory")
	cod := fs.String("cod", "", "Observatory code for the header (default: first record's)")
	observers := fs.String("observers", "", "Comma-separated observer list for the header")
	telescope := fs.String("tel", "", "Telescope description for the header")
	network := fs.String("net", "", "Astrometric network for the header")
	_ = fs.Parse(args)

	c := convert.Converter{Header: mpc.TNOdbHeader{
		ObservatoryCode:    *cod,
		Telescope:          *telescope,
		AstrometricNetwork: *network,
	}}
	if *observers != "" {
		for _, name := range strings.Split(*observers, ",") {
			c.Header.Observers = append(c.Header.Observers, strings.TrimSpace(name))
		}
	}

	switch {
	case *dir != "":
		converted, err := c.BatchConvert(*dir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Convert errors: %v\n", err)
		}
		fmt.Fprintf(os.Stderr, "converted %d files\n", converted)
		if converted == 0 && err != nil {
			os.Exit(1)
		}
	case *inPath != "":
		if err := c.ConvertFile(*inPath, *outPath); err != nil {
			fmt.Fprintf(os.Stderr, "Convert failed: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "convert needs -input or -dir")
		fs.Usage()
		os.Exit(2)
	}
}
