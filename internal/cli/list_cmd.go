// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// list_cmd.go - List command implementation for chatvault.
//
// Command: list
// Aliases: ls, chats
//
// Examples:
//   chatvault list                    25 most recent conversations
//   chatvault list --limit 50         More of them
//   chatvault list --groups           Group chats only
//   chatvault list --search alice     Match handles and display names
package cli

import (
	"fmt"
	"strings"

	"github.com/jeranaias/chatvault/internal/msgstore"
	"github.com/jeranaias/chatvault/internal/util"
)

// defaultListLimit bounds the recent-chats listing.
const defaultListLimit = 25

// HandleList prints recent conversations, newest first.
func HandleList(args []string) error {
	parser := NewArgParser(args)

	app, err := newApp(parser)
	if err != nil {
		return err
	}
	defer app.Close()

	chats, err := app.Store.RecentChats(parser.IntFlag("limit", defaultListLimit), listFilter(parser))
	if err != nil {
		return err
	}
	if len(chats) == 0 {
		fmt.Println("No conversations found.")
		return nil
	}

	for i, chat := range chats {
		fmt.Printf("%3d. %-40s  %s  %5d msgs%s\n",
			i+1,
			util.TruncateRunes(chatLabel(app, chat), 40),
			msgstore.FormatTimestamp(chat.LastDate),
			chat.MessageCount,
			mediaBadges(chat))
		fmt.Printf("     %s\n", chat.GUID)
	}
	return nil
}

// listFilter builds the store filter from command flags.
func listFilter(parser *ArgParser) msgstore.ListFilter {
	return msgstore.ListFilter{
		GroupsOnly:   parser.BoolFlag("groups"),
		OneOnOneOnly: parser.BoolFlag("direct"),
		Search:       parser.Flag("search"),
	}
}

// chatLabel names a conversation for display: its group name when set,
// otherwise its resolved participants.
func chatLabel(app *App, chat msgstore.ChatSummary) string {
	if chat.DisplayName != "" {
		return chat.DisplayName
	}
	var names []string
	for _, h := range chat.Participants {
		names = append(names, app.Resolver.Resolve(h))
	}
	if label := strings.Join(names, ", "); label != "" {
		return label
	}
	return chat.GUID
}

// mediaBadges marks which media kinds a conversation contains.
func mediaBadges(chat msgstore.ChatSummary) string {
	var b strings.Builder
	if chat.HasImages {
		b.WriteString("  [img]")
	}
	if chat.HasVideos {
		b.WriteString("  [vid]")
	}
	if chat.HasAudio {
		b.WriteString("  [aud]")
	}
	return b.String()
}
