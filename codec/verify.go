package codec

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/cloudcmds/codedata/code"
)

// VerifyRoundTrip checks both round-trip identities for one raw code
// object: re-encoding the decoded form must reproduce the input
// exactly, and decoding the re-encoded form must be structurally equal
// to the first decode.
func VerifyRoundTrip(raw *Raw) error {
	c, err := FromBinary(raw)
	if err != nil {
		return err
	}
	back, err := ToBinary(c)
	if err != nil {
		return err
	}
	if !raw.Equal(back) {
		return fmt.Errorf("re-encoding %s produced different binary fields", raw.Name)
	}
	again, err := FromBinary(back)
	if err != nil {
		return fmt.Errorf("re-decoding %s: %w", raw.Name, err)
	}
	if !code.Equal(c, again) {
		return fmt.Errorf("re-decoding %s produced a structurally different code object", raw.Name)
	}
	return nil
}

// VerifyCorpus runs VerifyRoundTrip over a batch of raw code objects,
// collecting every failure instead of stopping at the first.
func VerifyCorpus(raws []*Raw) error {
	var result *multierror.Error
	for i, raw := range raws {
		if err := VerifyRoundTrip(raw); err != nil {
			result = multierror.Append(result, fmt.Errorf("corpus entry %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}
