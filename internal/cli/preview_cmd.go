// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// preview_cmd.go - Preview command implementation for chatvault.
//
// Command: preview
// Aliases: show
//
// Examples:
//   chatvault preview <chat-guid>             Last 10 messages
//   chatvault preview <chat-guid> --count 25  More of them
package cli

import (
	"fmt"

	"github.com/jeranaias/chatvault/internal/msgstore"
	"github.com/jeranaias/chatvault/internal/util"
)

// defaultPreviewCount bounds a conversation preview.
const defaultPreviewCount = 10

// HandlePreview prints the tail of a conversation.
func HandlePreview(args []string) error {
	parser := NewArgParser(args)

	chatGUID := parser.Positional(0)
	if chatGUID == "" {
		return fmt.Errorf("preview requires a chat GUID (see: chatvault list)")
	}

	app, err := newApp(parser)
	if err != nil {
		return err
	}
	defer app.Close()

	lines, err := app.Store.Preview(chatGUID, parser.IntFlag("count", defaultPreviewCount))
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Println("No messages.")
		return nil
	}

	for _, line := range lines {
		sender := "Me"
		if !line.IsFromMe {
			sender = app.Resolver.Resolve(line.HandleID)
		}
		fmt.Printf("[%s] %s: %s\n",
			msgstore.FormatTimestamp(line.Date),
			sender,
			util.TruncateRunes(line.Text, 120))
	}
	return nil
}
