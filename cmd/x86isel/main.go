package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/oisee/x86isel/pkg/mir"
	"github.com/oisee/x86isel/pkg/session"
)

var log = logrus.New()

func main() {
	rootCmd := &cobra.Command{
		Use:   "x86isel",
		Short: "x86-64 MIR-to-machine-code encoder",
	}

	var configPath string
	var verbose bool
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(logrus.DebugLevel)
		}
	}

	var output string
	encodeCmd := &cobra.Command{
		Use:   "encode [program.json]",
		Short: "Encode a MIR program (JSON) into machine code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEncode(args[0], output, configPath)
		},
	}
	encodeCmd.Flags().StringVarP(&output, "output", "o", "", "Output file for raw machine code (default: stdout hex)")

	selftestCmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run the built-in golden-vector encoding checks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelftest()
		},
	}

	rootCmd.AddCommand(encodeCmd, selftestCmd)
	if err := rootCmd.Execute(); err != nil {
		log.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func loadSessionConfig(configPath string) (session.Config, error) {
	if configPath == "" {
		return session.DefaultConfig(), nil
	}
	return session.LoadConfig(configPath)
}

func runEncode(programPath, outputPath, configPath string) error {
	cfg, err := loadSessionConfig(configPath)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(programPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", programPath, err)
	}

	prog, err := decodeProgram(data)
	if err != nil {
		return fmt.Errorf("decoding MIR program: %w", err)
	}

	log.WithField("instructions", prog.Len()).Debug("dispatching MIR program")

	sess := session.New(cfg)
	out, err := sess.Encode(prog)
	if err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	log.WithFields(logrus.Fields{
		"bytes":       len(out.Code),
		"relocations": len(out.MachORelocs),
	}).Info("encode complete")

	if outputPath == "" {
		fmt.Printf("%x\n", out.Code)
		return nil
	}
	return os.WriteFile(outputPath, out.Code, 0o644)
}

func runSelftest() error {
	failures := 0
	for _, tc := range goldenVectors {
		got, err := tc.encode()
		if err != nil {
			failures++
			log.WithField("name", tc.name).WithError(err).Error("selftest errored")
			continue
		}
		if !bytes.Equal(got, tc.want) {
			failures++
			log.WithFields(logrus.Fields{
				"name": tc.name,
				"got":  fmt.Sprintf("%x", got),
				"want": fmt.Sprintf("%x", tc.want),
			}).Error("selftest mismatch")
			continue
		}
		log.WithField("name", tc.name).Info("selftest ok")
	}
	if failures > 0 {
		return fmt.Errorf("%d/%d golden vectors failed", failures, len(goldenVectors))
	}
	fmt.Printf("%d/%d golden vectors passed\n", len(goldenVectors), len(goldenVectors))
	return nil
}

// jsonProgram is the wire shape for an "encode" CLI invocation's input:
// a flattened view of mir.Program that round-trips through JSON. It
// exists only at this CLI boundary; every other package works directly
// against mir.Program.
type jsonProgram struct {
	Instructions []jsonInstruction `json:"instructions"`
	Extra        []jsonExtra       `json:"extra"`
}

type jsonInstruction struct {
	Family string `json:"family"`
	Mn     string `json:"mnemonic"`
	Reg1   string `json:"reg1,omitempty"`
	Reg2   string `json:"reg2,omitempty"`
	Flags  uint8  `json:"flags"`
	Data   struct {
		Kind     string `json:"kind"`
		Imm      int32  `json:"imm,omitempty"`
		Inst     uint32 `json:"inst,omitempty"`
		Payload  uint32 `json:"payload,omitempty"`
		ExternFn uint32 `json:"extern_fn,omitempty"`
		GotEntry uint32 `json:"got_entry,omitempty"`
		RegMask  uint64 `json:"reg_mask,omitempty"`
	} `json:"data"`
}

type jsonExtra struct {
	Kind    string `json:"kind"`
	Imm64   uint64 `json:"imm64,omitempty"`
	A       int32  `json:"a,omitempty"`
	B       int32  `json:"b,omitempty"`
	Line    uint32 `json:"line,omitempty"`
	Column  uint32 `json:"column,omitempty"`
	AirInst uint32 `json:"air_inst,omitempty"`
	ArgIdx  uint32 `json:"arg_index,omitempty"`
}

func decodeProgram(data []byte) (*mir.Program, error) {
	var jp jsonProgram
	if err := json.Unmarshal(data, &jp); err != nil {
		return nil, err
	}
	return newProgramDecoder(jp)
}
