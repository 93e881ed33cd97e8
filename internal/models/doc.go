// Package models defines the core domain models for the treat planner.
//
// # Models
//
//   - DayPlan: a named, dated container for treats with a member list
//   - Event: a single treat inside a day plan, optionally carrying a bill
//   - Member: a participant identified by display name, optionally with an email
//   - UserProfile: a signed-in identity recorded on first use
//
// Members, attendees, payers and RSVP keys are display-name strings, not user IDs.
// Identity matching between a user and those strings lives in package ledger.
//
// # Placeholder dates
//
// Plans and events without a decided date carry a date in year 2099 or later
// instead of a null field. Stored records depend on this, so the sentinel is kept
// and detected by IsPlaceholderDate.
package models
