package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration (loaded from file or defaults).`,
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var (
	configJSON   bool
	validateOnly bool
)

func init() {
	configShowCmd.Flags().BoolVar(&configJSON, "json", false, "output in JSON format")
	configShowCmd.Flags().BoolVar(&validateOnly, "validate", false, "only validate config, don't print")
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		if configJSON {
			fmt.Fprintf(out, `{"valid":false,"error":%q}`+"\n", err.Error())
		} else {
			fmt.Fprintf(out, "Configuration invalid: %v\n", err)
		}
		return err
	}

	if validateOnly {
		if configJSON {
			fmt.Fprintln(out, `{"valid":true}`)
		} else {
			fmt.Fprintln(out, "Configuration is valid")
		}
		return nil
	}

	// Never echo the password
	shown := *cfg
	if shown.Auth.Password != "" {
		shown.Auth.Password = "********"
	}

	var data []byte
	if configJSON {
		data, err = json.MarshalIndent(&shown, "", "  ")
	} else {
		data, err = yaml.Marshal(&shown)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, string(data))
	return nil
}
