// Package stress resolves stress gained from tests.
//
// The package is pure: Resolve takes the caller's stress state and a resolved
// test and returns the next state, the delta it applied and the notifications
// the host should deliver. Callers own persistence and must serialize
// resolutions per character.
//
// A test outcome is classified before any stress moves:
//   - Fumble: a failed double above the target, or a failed 99 or 100.
//     Stress is unchanged but the fumble is still announced.
//   - Critical: a successful double at or under the target. Stress resets to 0.
//   - Ordinary failure: stress rises by 1 - SL.
//   - Ordinary success: stress is unchanged.
//
// When a test replaces an earlier result for the same check (a fortune reroll
// or a fortune point spent to add SL), the earlier delta is removed first so
// only the latest result counts.
package stress
