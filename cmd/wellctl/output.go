package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/danielpatrickdp/adaptive-state/wellness-core/internal/present"
	"google.golang.org/protobuf/proto"
)

func printProto(out io.Writer, m proto.Message) error {
	data, err := present.JSON(m, true)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
