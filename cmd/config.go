package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kamal-hamza/grassfier/pkg/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Edita el archivo de configuración de gf",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := appDirs.ConfigPath

		// Write the defaults the first time
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := appConfig.Save(path); err != nil {
				return err
			}
			fmt.Println(ui.FormatSuccess("Configuración por defecto creada"))
		}

		fmt.Println(ui.FormatInfo("Abriendo configuración: " + path))

		editor := os.Getenv("EDITOR")
		if editor == "" {
			editor = "vi"
		}

		c := exec.Command(editor, path)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		return c.Run()
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Muestra la ubicación del archivo de configuración",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(appDirs.ConfigPath)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Muestra la configuración efectiva",
	Long:  `Muestra la configuración tras aplicar los valores por defecto, el archivo de configuración y las variables de entorno GF_*.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := yaml.Marshal(appConfig)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Print(string(out))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
}
