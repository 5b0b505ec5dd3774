package domain

import "time"

type MessageID string

type Role string

const (
	RoleInstruction Role = "instruction"
	RoleUser        Role = "user"
	RolePartner     Role = "partner"
)

type Timestamp = time.Time
