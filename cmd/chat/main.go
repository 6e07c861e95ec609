package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chat-client/internal/api"
	"chat-client/internal/auth"
	"chat-client/internal/chat"
	"chat-client/internal/config"
	"chat-client/internal/events"
	"chat-client/internal/models"
	"chat-client/internal/transport"
	"chat-client/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	token, err := auth.ParseToken(cfg.Auth.Token)
	if err != nil {
		logger.Fatal("Invalid auth token: %v", err)
	}
	if token.Expired(time.Now()) {
		logger.Fatal("Auth token expired at %s, log in again", token.ExpiresAt.Format(time.RFC3339))
	}

	client := api.NewClient(cfg.API.BaseURL, token.Raw(), cfg.API.Timeout)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout)
	user, err := client.Profile(ctx)
	cancel()
	if err != nil {
		logger.Fatal("Failed to fetch profile: %v", err)
	}
	logger.Info("Logged in as %s", user.Username)

	sock := transport.NewSocket(cfg.Socket.URL, token.Raw())
	if err := sock.Connect(); err != nil {
		logger.Fatal("Failed to connect: %v", err)
	}
	defer sock.Disconnect()

	session := chat.NewSession(sock, client)
	session.SetHistoryLimit(cfg.Chat.HistoryPageSize)
	subscribeOutput(session, user.ID)

	printRooms(client)

	go commandLoop(session, client)

	// Wait for interrupt signal to shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Disconnecting...")
}

func subscribeOutput(session *chat.Session, localUserID string) {
	bus := session.Bus()

	bus.Subscribe(events.MessagesLoaded, func(payload interface{}) {
		p := payload.(events.MessagesLoadedPayload)
		fmt.Printf("--- %s (%d unread) ---\n", p.RoomID, p.UnreadCount)
		for _, m := range p.Messages {
			printMessage(m, localUserID)
		}
	})

	bus.Subscribe(events.NewMessage, func(payload interface{}) {
		p := payload.(events.NewMessagePayload)
		printMessage(p.Message, localUserID)
	})

	bus.Subscribe(events.MessageUpdated, func(payload interface{}) {
		p := payload.(events.MessageUpdatedPayload)
		fmt.Printf("[%s] delivered as %s\n", p.RoomID, p.MessageID)
	})

	bus.Subscribe(events.MessageStatusUpdated, func(payload interface{}) {
		p := payload.(events.MessageStatusPayload)
		fmt.Printf("[%s] message %s is now %s\n", p.RoomID, p.MessageID, p.Status)
	})

	bus.Subscribe(events.TypingUpdate, func(payload interface{}) {
		p := payload.(events.TypingUpdatePayload)
		if len(p.TypingUsers) == 0 {
			return
		}
		fmt.Printf("[%s] typing: %s\n", p.RoomID, strings.Join(p.TypingUsers, ", "))
	})

	bus.Subscribe(events.ConnectionStatus, func(payload interface{}) {
		p := payload.(events.ConnectionStatusPayload)
		if p.Connected {
			fmt.Println("* connected")
		} else {
			fmt.Println("* disconnected")
		}
	})
}

func printMessage(m models.Message, localUserID string) {
	sender := m.SenderID
	if sender == models.LocalSender || sender == localUserID {
		sender = "me"
	}
	fmt.Printf("[%s] %s %s: %s\n", m.RoomID, m.Timestamp.Format("15:04:05"), sender, m.Content)
}

func printRooms(client *api.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	rooms, err := client.ListRooms(ctx)
	if err != nil {
		logger.Error("Failed to list rooms: %v", err)
		return
	}
	fmt.Println("Rooms:")
	for _, room := range rooms {
		fmt.Printf("  %s (%s)\n", room.Name, room.ID)
	}
	fmt.Println("Commands: /join <room>, /leave, /rooms, /typing on|off, /quit")
}

func commandLoop(session *chat.Session, client *api.Client) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "/join "):
			roomID := strings.TrimSpace(strings.TrimPrefix(line, "/join "))
			if err := session.JoinRoom(roomID); err != nil {
				logger.Error("Join %s: %v", roomID, err)
			}

		case line == "/leave":
			if err := session.LeaveRoom(session.ActiveRoom()); err != nil {
				logger.Error("Leave: %v", err)
			}

		case line == "/rooms":
			printRooms(client)

		case line == "/typing on":
			if err := session.SetTypingIndicator(true); err != nil {
				logger.Error("Typing: %v", err)
			}

		case line == "/typing off":
			if err := session.SetTypingIndicator(false); err != nil {
				logger.Error("Typing: %v", err)
			}

		case line == "/quit":
			syscall.Kill(syscall.Getpid(), syscall.SIGINT)
			return

		default:
			if err := session.SendMessage(line, models.KindText, nil); err != nil {
				logger.Error("Send: %v", err)
			}
		}
	}
}
