// Package domain contains the core entities of the study scheduler:
// decks, cards, and the per-(card, user) review records that drive
// spaced-repetition scheduling.
package domain
