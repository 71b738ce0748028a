package cmd

import (
	"log"
	"os"

	"github.com/jsphweid/parle/config"
	"github.com/jsphweid/parle/file"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	v       = config.NewViper()
	cfg     = config.DefaultConfig()
	store   = file.NewStore(cfg.S3)
	logger  = log.New(os.Stderr, "parle: ", log.LstdFlags)
)

var rootCmd = &cobra.Command{
	Use:   "parle",
	Short: "Parallel run-length encoding compressor",
	Long: `parle compresses files with run-length encoding, splitting the input
into one chunk per worker and encoding the chunks in parallel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (yaml)")
	flags.Int("workers", 0, "number of chunks to process in parallel (0 = number of CPUs, at least 2)")
	flags.String("out-dir", "", "directory for batch output")
	flags.BoolP("verbose", "v", false, "log every chunk")
	bindFlag("workers", flags.Lookup("workers"))
	bindFlag("out_dir", flags.Lookup("out-dir"))
	bindFlag("verbose", flags.Lookup("verbose"))
}

func loadConfig() error {
	loaded, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded
	store = file.NewStore(cfg.S3)
	return nil
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

// Root exposes the command tree for end to end tests.
func Root() *cobra.Command {
	return rootCmd
}
