package cli

import (
	coreapp "annotcheck/internal/core/app"

	tea "github.com/charmbracelet/bubbletea"
)

func runUI(app *coreapp.App) error {
	m := initialModel(app.ProjectRoot())
	p := tea.NewProgram(m, tea.WithAltScreen())

	app.SetUpdateHandler(func(res coreapp.Result) {
		p.Send(updateMsg{result: res})
	})
	defer app.SetUpdateHandler(nil)

	go func() {
		p.Send(updateMsg{result: app.LastResult()})
	}()

	_, err := p.Run()
	return err
}
