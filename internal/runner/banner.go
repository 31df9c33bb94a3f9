package runner

import (
	"github.com/projectdiscovery/gologger"

	"github.com/owlmon/owl/pkg/version"
)

var banner = `
                __
  ____ _      _/ /
 / __ \ | /| / / /
/ /_/ / |/ |/ / /
\____/|__/|__/_/
`

// showBanner is used to show the banner to the user
func showBanner() {
	gologger.Print().Msgf("%s%s\n", banner, version.Version)
	gologger.Print().Msgf("\t\twho's on the wire\n\n")
	gologger.Info().Msgf("press %s or CTRL+C to quit\n", au.Yellow("q"))
}
