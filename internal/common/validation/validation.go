package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// Максимальные длины для различных полей
	MaxTitleLength           = 100
	MaxCreatorLength         = 150
	MaxParticipantNameLength = 100
	// Билетов у одного участника, пул розыгрыша строится целиком в памяти
	MaxTickets = 10000

	MinTitleLength = 1
)

// ValidateTitle проверяет название розыгрыша
func ValidateTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}

	if utf8.RuneCountInString(title) < MinTitleLength {
		return fmt.Errorf("title must be at least %d characters long", MinTitleLength)
	}

	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}

	return nil
}

// ValidateCreator проверяет имя создателя
func ValidateCreator(creator string) error {
	if utf8.RuneCountInString(strings.TrimSpace(creator)) > MaxCreatorLength {
		return fmt.Errorf("creator cannot exceed %d characters", MaxCreatorLength)
	}
	return nil
}

// ValidateParticipantName проверяет имя участника
func ValidateParticipantName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("participant name cannot be empty")
	}

	if utf8.RuneCountInString(name) > MaxParticipantNameLength {
		return fmt.Errorf("participant name cannot exceed %d characters", MaxParticipantNameLength)
	}

	return nil
}

// ValidateTickets проверяет количество билетов участника
func ValidateTickets(tickets int) error {
	if tickets < 0 {
		return fmt.Errorf("tickets cannot be negative")
	}
	if tickets > MaxTickets {
		return fmt.Errorf("tickets cannot exceed %d", MaxTickets)
	}
	return nil
}

// ValidatePositiveInt проверяет, что число положительное
func ValidatePositiveInt(value int64, fieldName string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive", fieldName)
	}
	return nil
}
