// Package walker traverses the part tree returned by message.Parse.
package walker

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/zostay/go-mua/message"
)

// ErrNoSuchPart is returned by Find when the path does not name a part.
var ErrNoSuchPart = errors.New("no such part")

// Parts is a function that can be processed for each part of a message. It
// receives the depth of the part and its index among its siblings.
type Parts func(depth, i int, part *message.Part) error

type open struct {
	depth int
	i     int
	path  string
	part  *message.Part
}

// walk performs the depth first traversal shared by the walkers.
func walk(root *message.Part, fn func(o open) error) error {
	openStack := make([]open, 0, 10)

	pushStack := func(o open) {
		for i := len(o.part.Parts) - 1; i >= 0; i-- {
			path := strconv.Itoa(i + 1)
			if o.path != "" {
				path = o.path + "." + path
			}
			openStack = append(openStack, open{o.depth + 1, i, path, o.part.Parts[i]})
		}
	}

	popStack := func() open {
		end := len(openStack) - 1
		o := openStack[end]
		openStack = openStack[:end]
		return o
	}

	openStack = append(openStack, open{0, 0, "", root})
	for len(openStack) > 0 {
		o := popStack()
		if err := fn(o); err != nil {
			return err
		}
		pushStack(o)
	}

	return nil
}

// Walk performs a depth first search for all the parts of a message starting
// with the message itself. It calls the Parts function for each part of the
// message. If it returns an error, then processing stops immediately and the
// error is returned.
func (w Parts) Walk(root *message.Part) error {
	return walk(root, func(o open) error {
		return w(o.depth, o.i, o.part)
	})
}

// WalkLeaves will call the Parts function for each part without children
// using a depth first traversal.
func (w Parts) WalkLeaves(root *message.Part) error {
	return walk(root, func(o open) error {
		if len(o.part.Parts) > 0 {
			return nil
		}
		return w(o.depth, o.i, o.part)
	})
}

// WalkContainers will call the Parts function for each multipart and
// message part using a depth first traversal.
func (w Parts) WalkContainers(root *message.Part) error {
	return walk(root, func(o open) error {
		if !o.part.IsMultipart() && o.part.Type != message.Message {
			return nil
		}
		return w(o.depth, o.i, o.part)
	})
}

// Paths is a function that can be processed for each part of a message. It
// receives the path of the part as Find accepts it.
type Paths func(path string, depth int, part *message.Part) error

// Walk calls the Paths function for each part in depth first order. The root
// has the empty path.
func (w Paths) Walk(root *message.Part) error {
	return walk(root, func(o open) error {
		return w(o.path, o.depth, o.part)
	})
}

// Find returns the part named by path. A path is a dot separated list of one
// based child indexes, like "2.1" for the first child of the second child of
// root. The empty path names root.
func Find(root *message.Part, path string) (*message.Part, error) {
	p := root
	if path == "" {
		return p, nil
	}

	for _, s := range strings.Split(path, ".") {
		i, err := strconv.Atoi(s)
		if err != nil || i < 1 || i > len(p.Parts) {
			return nil, fmt.Errorf("%w: %q", ErrNoSuchPart, path)
		}
		p = p.Parts[i-1]
	}

	return p, nil
}
