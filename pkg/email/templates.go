package email

import (
	"fmt"
	"html"
	"strings"
)

// WelcomeMessage is sent once a subscription is created.
func WelcomeMessage(to, name string) Message {
	name = strings.TrimSpace(name)
	greeting := "Hi"
	if name != "" {
		greeting = "Hi " + name
	}
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Welcome to Tatame",
		Text:    fmt.Sprintf("%s,\n\nYour subscription is active. See you on the mats!\n\nTatame", greeting),
		HTML:    fmt.Sprintf("<p>%s,</p><p>Your subscription is active. See you on the mats!</p><p>Tatame</p>", html.EscapeString(greeting)),
	}
}
