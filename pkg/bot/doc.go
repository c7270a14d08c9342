// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package bot runs a Discord bot: one gateway connection, a REST client,
// and handlers registered by event name.
//
//	b := bot.New(token, resources.IntentGuilds|resources.IntentGuildMessages)
//	b.On("on_ready", func(ctx context.Context, ev events.Event) error {
//		return nil
//	})
//	bot.Handle(b, func(ctx context.Context, m *events.MessageCreate) error {
//		_, err := b.REST().CreateMessage(ctx, m.ChannelID, resources.MessageCreate{Content: "pong"})
//		return err
//	})
//	err := b.Run(ctx)
package bot
