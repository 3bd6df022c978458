package rbac

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var defaultRoles []byte

type yamlSource struct {
	data []byte
}

// NewYAMLSource returns a RoleSource decoding a YAML mapping of role name to Role.
func NewYAMLSource(data []byte) RoleSource {
	return &yamlSource{data: bytes.Clone(data)}
}

// NewYAMLFileSource reads role definitions from path.
func NewYAMLFileSource(path string) (RoleSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrInvalidRoleSource, err)
	}
	return NewYAMLSource(data), nil
}

// DefaultRoles returns the built-in owner, admin, manager, cashier and stock_keeper roles.
func DefaultRoles() RoleSource {
	return NewYAMLSource(defaultRoles)
}

func (s *yamlSource) Load(context.Context) (map[string]Role, error) {
	dec := yaml.NewDecoder(bytes.NewReader(s.data))
	dec.KnownFields(true)

	var roles map[string]Role
	if err := dec.Decode(&roles); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrInvalidRoleSource, err)
	}
	return roles, nil
}
