// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package process

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/docx-t2s/internal/container"
)

// ContainerUpgrader converts legacy .doc files by piping them through a
// filter image that writes .docx to stdout.
type ContainerUpgrader struct {
	runtime container.Runtime
	image   string
}

// NewContainerUpgrader returns an upgrader that runs image on rt. It fails
// when the image is not present locally.
func NewContainerUpgrader(ctx context.Context, rt container.Runtime, image string) (*ContainerUpgrader, error) {
	if err := rt.ImageExists(ctx, image); err != nil {
		return nil, fmt.Errorf("upgrade image not available in %s: %w", rt.Name(), err)
	}
	return &ContainerUpgrader{runtime: rt, image: image}, nil
}

// Upgrade returns the .docx bytes produced for the .doc file at path.
func (u *ContainerUpgrader) Upgrade(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := u.runtime.Filter(context.Background(), u.image, f, &out); err != nil {
		return nil, fmt.Errorf("upgrading %s with %s: %w", path, u.image, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%s produced empty output for %s", u.image, path)
	}
	return out.Bytes(), nil
}
