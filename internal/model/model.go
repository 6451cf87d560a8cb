package model

// Package model contains domain models shared across layers.
// Types here carry no persistence tags or business logic.
