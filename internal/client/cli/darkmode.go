package cli

import (
	"fmt"

	"github.com/dom/tickify/internal/client/view"
	"github.com/dom/tickify/internal/domain"
	"github.com/spf13/cobra"
)

func (a *app) darkmodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "darkmode [on|off]",
		Short:     "Show or set the dark color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				a.print(cmd, fmt.Sprintf("darkmode is %s\n", onOff(a.session.DarkMode)))
				return nil
			}

			switch args[0] {
			case "on":
				a.session.DarkMode = true
			case "off":
				a.session.DarkMode = false
			default:
				return domain.NewValidationError("darkmode", "Use `darkmode on` or `darkmode off`")
			}
			if err := a.sessions.Save(a.session); err != nil {
				return err
			}

			a.render = view.New(a.session.DarkMode)
			a.print(cmd, a.render.Success("darkmode "+onOff(a.session.DarkMode)))
			return nil
		},
	}
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
