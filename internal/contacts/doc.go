// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package contacts resolves raw message handles to display names.
//
// Names come from AddressBook .abcddb databases plus manual aliases from the
// metadata store. Handles are normalized before lookup: emails lowercase,
// phone numbers reduced to their trailing ten digits.
//
// # Usage
//
//	resolver, err := contacts.Load(contactsDir, aliases)
//	name := resolver.Resolve("+1 (555) 123-4567")
package contacts
