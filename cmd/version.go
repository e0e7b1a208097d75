package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kamal-hamza/grassfier/pkg/ui"
)

// Version information - these can be set during build with ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Muestra la información de versión",
	Aliases: []string{"v"},
	Long:    `Muestra la versión actual de gf junto con los datos de compilación. (alias: v)`,
	Run:     runVersion,
}

func runVersion(cmd *cobra.Command, args []string) {
	fmt.Println(ui.StyleTitle.Render("Grassfier") + " - Clasificador de imágenes de plantas")
	fmt.Println()
	fmt.Println(ui.RenderKeyValue("Versión", Version))
	fmt.Println(ui.RenderKeyValue("Commit", GitCommit))
	fmt.Println(ui.RenderKeyValue("Compilado", BuildDate))
}
