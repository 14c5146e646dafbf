// Package autofill contains the fill response a service returns to the
// platform when asked for autofill suggestions, together with the dataset,
// field id and extras types it is made of.
//
// # Building responses
//
// Responses are assembled with a Builder and are immutable afterwards:
//
//	homer, _ := autofill.NewDatasetBuilder("homer")
//	ds, err := homer.
//	    SetTextValue(username, "homer").
//	    SetTextValue(password, "D'OH!").
//	    Build()
//
//	b, _ := autofill.NewBuilder("r1")
//	resp, err := b.AddDataset(ds).AddSavableFields(state, zip).Build()
//
// Every field a dataset fills is automatically savable. Dataset names must be
// unique within a response, and a builder can only be built once.
//
// A service that has nothing to suggest but still wants the user's input saved
// can return a response with savable fields only. A service whose data is
// locked can return a response with only an authentication handle; the
// platform triggers it and asks again once the user has authenticated. The
// package does not require a response to carry anything beyond its id.
//
// # Errors
//
// Failures are reported as ErrInvalidArgument, ErrDuplicateName or
// ErrAlreadyBuilt (use errors.Is). The detailed types InvalidArgumentError and
// DuplicateNameError carry the offending field or name.
//
// # Encoding
//
// Marshal and Unmarshal convert a response to and from the parcel format (see
// package parcel). Decoding never assigns fields directly: it replays the
// builder calls, so bytes from a file, a cache or another process cannot
// produce a response that could not have been built in-process.
package autofill
