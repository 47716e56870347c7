package handlers

import (
	"context"

	"boardserver/internal/middleware"
)

type messageKey string

const (
	msgAlreadyLoggedIn messageKey = "already_logged_in"
	msgBadCredentials  messageKey = "bad_credentials"
	msgLoginSuccess    messageKey = "login_success"
	msgLogoutSuccess   messageKey = "logout_success"
)

// messages holds the user-facing strings per locale. The board originally
// served a Korean audience, so both locales are first-class.
var messages = map[string]map[messageKey]string{
	"en": {
		msgAlreadyLoggedIn: "already logged in from another session",
		msgBadCredentials:  "no matching account",
		msgLoginSuccess:    "login successful",
		msgLogoutSuccess:   "logout successful",
	},
	"ko": {
		msgAlreadyLoggedIn: "다른 세션에서 이미 로그인되어 있습니다",
		msgBadCredentials:  "일치하는 정보 없음",
		msgLoginSuccess:    "로그인 성공",
		msgLogoutSuccess:   "로그아웃 성공",
	},
}

func localize(ctx context.Context, key messageKey) string {
	locale := middleware.LocaleFromContext(ctx)
	if m, ok := messages[locale]; ok {
		if s, ok := m[key]; ok {
			return s
		}
	}
	return messages["en"][key]
}
