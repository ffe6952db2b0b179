package projection

import (
	"os"

	"github.com/bytedance/sonic"
)

// WriteJSON writes the full result, records and fleet summaries, as indented JSON.
func WriteJSON(path string, res *Result) error {
	raw, err := MarshalJSON(res)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

func MarshalJSON(res *Result) ([]byte, error) {
	return sonic.ConfigStd.MarshalIndent(res, "", "  ")
}
