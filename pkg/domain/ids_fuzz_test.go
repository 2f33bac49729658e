package domain

import (
	"testing"
	"unicode/utf8"
)

// FuzzParseCollectiveID checks parsing never panics and accepted IDs round-trip.
func FuzzParseCollectiveID(f *testing.F) {
	f.Add("")
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("00000000-0000-0000-0000-000000000000")
	f.Add("not-a-uuid")
	f.Add(string([]byte{0x00, 0x01, 0x02}))

	f.Fuzz(func(t *testing.T, input string) {
		parsed, err := ParseCollectiveID(input)
		if err != nil {
			return
		}
		if parsed.IsNil() {
			t.Error("nil ID accepted")
		}
		roundTrip, err := ParseCollectiveID(parsed.String())
		if err != nil {
			t.Errorf("accepted ID failed round-trip: %v", err)
		}
		if roundTrip != parsed {
			t.Error("round-trip changed ID value")
		}
		if !utf8.ValidString(input) {
			t.Error("non-UTF8 input was accepted")
		}
	})
}

// FuzzParseAllIDs ensures every ID type shares the same acceptance rule.
func FuzzParseAllIDs(f *testing.F) {
	f.Add("550e8400-e29b-41d4-a716-446655440000")
	f.Add("")
	f.Add("invalid")

	f.Fuzz(func(t *testing.T, input string) {
		_, errUser := ParseUserID(input)
		_, errCollective := ParseCollectiveID(input)
		_, errMembership := ParseMembershipID(input)
		_, errActivity := ParseActivityID(input)

		accepted := errUser == nil
		if (errCollective == nil) != accepted || (errMembership == nil) != accepted || (errActivity == nil) != accepted {
			t.Error("inconsistent parsing across ID types")
		}
	})
}
