package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chocogen/internal/compiler"
	"chocogen/internal/logger"
	"chocogen/pkg/codegen"
	"chocogen/pkg/color"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:           "chocogen",
	Short:         "RISC-V code generator for typed ChocoPy programs",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(viper.GetBool("verbose"), viper.GetBool("no-color"))
		if viper.GetBool("no-color") {
			color.EnableColor(false)
		}
	},
}

var buildCmd = &cobra.Command{
	Use:   "build <typed-ast.json>",
	Short: "Write the RV32IM assembly for a typed program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newCompiler(args[0])
		if c.OutputFile == "" {
			c.OutputFile = "a.s"
		}
		return c.Compile()
	},
}

var runCmd = &cobra.Command{
	Use:   "run <typed-ast.json>",
	Short: "Compile a typed program and execute it in the built-in simulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newCompiler(args[0])
		err := c.Run()
		if errors.Is(err, compiler.ErrProgramFailed) {
			os.Exit(c.ExitCode())
		}
		return err
	},
}

var layoutCmd = &cobra.Command{
	Use:   "layout <typed-ast.json>",
	Short: "Print the object and frame layouts of a typed program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newCompiler(args[0])
		c.Query, _ = cmd.Flags().GetString("query")
		return c.Layout()
	},
}

func newCompiler(source string) *compiler.Compiler {
	return &compiler.Compiler{
		Verbose:    viper.GetBool("verbose"),
		NoColor:    viper.GetBool("no-color"),
		Comments:   viper.GetBool("comments"),
		HeapSize:   viper.GetInt("heap-size"),
		MaxSteps:   viper.GetInt("max-steps"),
		SourceFile: source,
		OutputFile: viper.GetString("output"),
	}
}

// bindFlags makes each named flag the source of the viper key of the same
// name.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, names ...string) error {
	for _, name := range names {
		if err := v.BindPFlag(name, flags.Lookup(name)); err != nil {
			return fmt.Errorf("flag %s: %w", name, err)
		}
	}
	return nil
}

func init() {
	viper.SetEnvPrefix("chocogen")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetConfigName("chocogen")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "chocogen"))
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "Verbose mode")
	flags.BoolP("no-color", "n", false, "Disable colored output")
	flags.StringP("output", "o", "", "Assembly output file")
	flags.Bool("comments", true, "Annotate the generated assembly")
	flags.Int("heap-size", codegen.DefaultHeapSize>>20, "Heap size in MiB")
	flags.Int("max-steps", 0, "Instruction limit for run (0 for none)")
	if err := bindFlags(viper.GetViper(), flags,
		"verbose", "no-color", "output", "comments", "heap-size", "max-steps"); err != nil {
		log.Fatal("Failed to bind flags", "error", err)
	}

	layoutCmd.Flags().StringP("query", "q", "", "JMESPath expression selecting part of the layout")

	rootCmd.AddCommand(buildCmd, runCmd, layoutCmd)
}

func main() {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, color.Error(err.Error()))
			os.Exit(1)
		}
	}
	if err := rootCmd.Execute(); err != nil {
		log.Fatal("Compilation failed", "error", err)
	}
}
