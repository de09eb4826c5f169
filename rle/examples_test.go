package rle_test

import (
	"bytes"
	"fmt"

	"badc0de.net/pkg/go-redmoon/rle"
)

// Example builds a small resource file in memory and decodes it again.
func Example() {
	buf := &bytes.Buffer{}
	err := rle.Encode(buf, &rle.ResourceFile{Resources: []rle.Resource{
		{Index: 2, Width: 2, Height: 1, Pixels: []byte{0xAA, 0xBB, 0xCC, 0xDD}},
	}})
	if err != nil {
		fmt.Println(err)
		return
	}

	rf, err := rle.Decode(17, buf.Bytes())
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, r := range rf.Resources {
		fmt.Printf("file %d, index %d: %dx%d % x\n", r.FileNumber, r.Index, r.Width, r.Height, r.Pixels)
	}
	// Output: file 17, index 2: 2x1 aa bb cc dd
}
