// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// picker.go - Interactive conversation picker for the export command.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/chatvault/internal/msgstore"
	"github.com/jeranaias/chatvault/internal/util"
)

// pickerLimit is how many recent conversations the picker offers.
const pickerLimit = 20

// pickChat lists recent conversations and prompts for a selection by number
// or by pasted GUID. Returns "" when the user cancels.
func pickChat(app *App) (string, error) {
	chats, err := app.Store.RecentChats(pickerLimit, msgstore.ListFilter{})
	if err != nil {
		return "", err
	}
	if len(chats) == 0 {
		fmt.Println("No conversations found.")
		return "", nil
	}

	fmt.Println("Recent conversations:")
	for i, chat := range chats {
		fmt.Printf("  %2d. %-40s  %s  %d msgs\n",
			i+1,
			util.TruncateRunes(chatLabel(app, chat), 40),
			msgstore.FormatTimestamp(chat.LastDate),
			chat.MessageCount)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	// Numbered labels feed tab completion.
	line.SetCompleter(func(prefix string) (out []string) {
		for i := range chats {
			n := strconv.Itoa(i + 1)
			if strings.HasPrefix(n, prefix) {
				out = append(out, n)
			}
		}
		return out
	})

	input, err := line.Prompt("Select a conversation (number or GUID, empty to cancel): ")
	if err != nil {
		// Ctrl-C / Ctrl-D cancel rather than fail.
		return "", nil
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return "", nil
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(chats) {
			return "", fmt.Errorf("selection %d out of range 1-%d", n, len(chats))
		}
		return chats[n-1].GUID, nil
	}
	return input, nil
}
