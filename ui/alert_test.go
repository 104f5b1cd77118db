package ui_test

import (
	"bytes"
	"testing"

	"github.com/jrsteele09/go-signin-client/ui"
	"github.com/stretchr/testify/require"
)

func TestTerminalAlerter(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		a := ui.NewTerminalAlerter(&buf, false)
		a.Alert(ui.TitleSuccess, ui.MsgLoginSucceeded)
		a.Alert("Twitter login not implemented yet", "")
		require.Equal(t, "[Success] Logged in successfully!\n[Twitter login not implemented yet]\n", buf.String())
	})

	t.Run("coloured", func(t *testing.T) {
		var buf bytes.Buffer
		a := ui.NewTerminalAlerter(&buf, true)
		a.Alert(ui.TitleError, ui.MsgInvalidForm)
		require.Equal(t, ui.RedInverse+"[Error]"+ui.ResetColor+" "+ui.MsgInvalidForm+"\n", buf.String())
	})
}

func TestAlerterFunc(t *testing.T) {
	var got []string
	var a ui.Alerter = ui.AlerterFunc(func(title, message string) {
		got = append(got, title, message)
	})
	a.Alert("t", "m")
	require.Equal(t, []string{"t", "m"}, got)
}
