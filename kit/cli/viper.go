package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// Opt is a single command-line option
type Opt struct {
	DestP interface{} // pointer to the destination

	Flag     string
	Default  interface{}
	Desc     string
	Required bool
}

// NewOpt creates a new command line option.
func NewOpt(destP interface{}, flag string, dflt interface{}, desc string) Opt {
	return Opt{
		DestP:   destP,
		Flag:    flag,
		Default: dflt,
		Desc:    desc,
	}
}

// Program parses CLI options
type Program struct {
	// Run is invoked by cobra on execute.
	Run func() error
	// Name is the name of the program in help usage and the env var prefix.
	Name string
	// Opts are the command line/env var options to the program
	Opts []Opt
}

// NewCommand creates a new cobra command to be executed that respects env
// vars and config files.
//
// Uses the upper-case version of the program's name as a prefix to all
// environment variables. Config is loaded from the file or directory named
// by <NAME>_CONFIG_PATH, defaulting to the working directory.
//
// This is to simplify the viper/cobra boilerplate.
func NewCommand(v *viper.Viper, p *Program) (*cobra.Command, error) {
	var cmd = &cobra.Command{
		Use:  p.Name,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return p.Run()
		},
	}

	v.SetEnvPrefix(strings.ToUpper(p.Name))
	v.AutomaticEnv()
	// This normalizes "-" to an underscore in env names.
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	if err := loadConfigFile(v); err != nil {
		return nil, err
	}
	if err := BindOptions(v, cmd, p.Opts); err != nil {
		return nil, err
	}

	return cmd, nil
}

// loadConfigFile reads config into v. The configured path may name a file
// directly or a directory holding a file named config.{json,toml,yaml,yml},
// searched in that order. A missing config is not an error; flags and env
// vars may cover everything.
func loadConfigFile(v *viper.Viper) error {
	configPath := v.GetString("CONFIG_PATH")
	if configPath == "" {
		configPath = "."
	}

	if fi, err := os.Stat(configPath); err == nil && fi.IsDir() {
		// directory names may contain dots, stat before sniffing the extension
		v.SetConfigName("config")
		v.AddConfigPath(configPath)
	} else {
		switch strings.ToLower(filepath.Ext(configPath)) {
		case ".json", ".toml", ".yaml", ".yml":
			v.SetConfigFile(configPath)
		default:
			v.SetConfigName("config")
			v.AddConfigPath(configPath)
		}
	}

	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
		return nil
	}
	return err
}

// BindOptions adds opts to the specified command and automatically
// registers those options with viper.
func BindOptions(v *viper.Viper, cmd *cobra.Command, opts []Opt) error {
	for _, o := range opts {
		switch destP := o.DestP.(type) {
		case *string:
			var d string
			if o.Default != nil {
				d = o.Default.(string)
			}
			cmd.Flags().StringVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			*destP = v.GetString(o.Flag)
		case *int:
			var d int
			if o.Default != nil {
				d = o.Default.(int)
			}
			cmd.Flags().IntVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			*destP = v.GetInt(o.Flag)
		case *int32:
			var d int32
			if o.Default != nil {
				// the default could be an int, int32 or int64
				d = cast.ToInt32(o.Default)
			}
			cmd.Flags().Int32Var(destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			*destP = v.GetInt32(o.Flag)
		case *int64:
			var d int64
			if o.Default != nil {
				d = cast.ToInt64(o.Default)
			}
			cmd.Flags().Int64Var(destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			*destP = v.GetInt64(o.Flag)
		case *bool:
			var d bool
			if o.Default != nil {
				d = o.Default.(bool)
			}
			cmd.Flags().BoolVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			*destP = v.GetBool(o.Flag)
		case *time.Duration:
			var d time.Duration
			if o.Default != nil {
				d = o.Default.(time.Duration)
			}
			cmd.Flags().DurationVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			*destP = v.GetDuration(o.Flag)
		case *[]string:
			var d []string
			if o.Default != nil {
				d = o.Default.([]string)
			}
			cmd.Flags().StringSliceVar(destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			*destP = v.GetStringSlice(o.Flag)
		case *zapcore.Level:
			var d zapcore.Level
			if o.Default != nil {
				d = o.Default.(zapcore.Level)
			}
			LevelVar(cmd.Flags(), destP, o.Flag, d, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			if s := v.GetString(o.Flag); s != "" {
				if err := destP.Set(s); err != nil {
					return fmt.Errorf("invalid value for %s: %v", o.Flag, err)
				}
			}
		case pflag.Value:
			if o.Default != nil {
				if err := destP.Set(o.Default.(string)); err != nil {
					return fmt.Errorf("invalid default for %s: %v", o.Flag, err)
				}
			}
			cmd.Flags().Var(destP, o.Flag, o.Desc)
			mustBindPFlag(v, o.Flag, cmd)
			if s := v.GetString(o.Flag); s != "" {
				if err := destP.Set(s); err != nil {
					return fmt.Errorf("invalid value for %s: %v", o.Flag, err)
				}
			}
		default:
			return fmt.Errorf("unsupported destination type %T for flag %s", o.DestP, o.Flag)
		}

		// a value already supplied by config or env satisfies the
		// requirement; cobra only counts flags set on the command line
		if o.Required && v.GetString(o.Flag) == "" {
			if err := cmd.MarkFlagRequired(o.Flag); err != nil {
				return err
			}
		}
	}
	return nil
}

func mustBindPFlag(v *viper.Viper, key string, cmd *cobra.Command) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(key)); err != nil {
		panic(err)
	}
}
