// Package models defines the persisted domain models for splitledger.
//
// # Models
//
//   - User: registered account, the identity behind a member
//   - Group: a set of members who share expenses
//   - Member: one participant of a group (registered user or guest)
//   - Expense: one shared cost paid by a member and split equally or by
//     explicit per-member amounts
//
// Balances and settlement plans are NOT models: they are derived on demand
// by the calculator package from a group's members and expenses and are
// never stored.
//
// # Design Principles
//
// 1. **Ids over pointers**: relationships use ID strings (GroupID, PaidBy, UserID)
// 2. **Unix timestamps**: all times are int64 seconds
// 3. **Guests are members**: people without an account get a generated id
package models
