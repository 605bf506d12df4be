// Package dynamodb stores reservations and bookstore contact records in DynamoDB.
//
// # Tables
//
// Reservations live in one table keyed by the day and the slot:
//
//   - pk: <len(bookstore)>#<bookstore>#<date>
//   - sk: <time>
//
// Listing a day is a single exact-match Query on pk. The readable attributes
// BookstoreName, Date, Time, Customer and Timestamp are stored alongside the keys.
//
// Contact records live in a second table keyed by BookstoreName with an Email
// attribute. The service never writes to it.
//
// # Write policy
//
// [reservations.PutOverwrite] issues a plain PutItem. [reservations.PutIfAbsent]
// adds the condition attribute_not_exists(pk); a failed condition is reported
// as [reservations.ErrConflict].
package dynamodb
