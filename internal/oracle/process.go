package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strings"

	"github.com/pkg/errors"

	lperrors "github.com/orizon-lang/lalrpop-ide/internal/errors"
	"github.com/orizon-lang/lalrpop-ide/internal/rusttype"
)

// ProcessHost delegates loading to an external program speaking JSON on
// stdin and stdout. The program receives
//
//	{"scope": {"crate_root": "...", "module_path": ["parser"]}, "source": "..."}
//
// and answers with the fully resolved alias targets
//
//	{"aliases": [{"name": "T1", "type": "..."}, {"name": "T2", "type": "..."}]}
type ProcessHost struct {
	Command string
	Args    []string
}

type processRequest struct {
	Scope  processScope `json:"scope"`
	Source string       `json:"source"`
}

type processScope struct {
	CrateRoot  string   `json:"crate_root"`
	CrateName  string   `json:"crate_name"`
	ModulePath []string `json:"module_path"`
}

type processResponse struct {
	Aliases []processAlias `json:"aliases"`
	Error   string         `json:"error,omitempty"`
}

type processAlias struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewProcessHost creates a host running command with args.
func NewProcessHost(command string, args ...string) *ProcessHost {
	return &ProcessHost{Command: command, Args: args}
}

func (h *ProcessHost) Load(ctx context.Context, scope Scope, source string) (Module, error) {
	if err := validateCommand(h.Command); err != nil {
		return nil, lperrors.OracleFailure(h.Command, err)
	}
	request, err := json.Marshal(processRequest{
		Scope:  processScope{CrateRoot: scope.CrateRoot, CrateName: scope.CrateName, ModulePath: scope.ModulePath},
		Source: source,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode oracle request")
	}

	cmd := exec.CommandContext(ctx, h.Command, h.Args...)
	cmd.Stdin = bytes.NewReader(request)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, lperrors.OracleFailure(h.Command, errors.Wrapf(err, "run: %s", strings.TrimSpace(stderr.String())))
	}
	return decodeResponse(stdout.Bytes())
}

func decodeResponse(data []byte) (Module, error) {
	var response processResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, errors.Wrap(err, "decode oracle response")
	}
	if response.Error != "" {
		return nil, errors.Errorf("oracle: %s", response.Error)
	}
	m := &processModule{types: make(map[string]rusttype.Type, len(response.Aliases))}
	for _, alias := range response.Aliases {
		t, err := rusttype.Parse(alias.Type)
		if err != nil {
			t = &rusttype.Opaque{Text: alias.Type}
		}
		m.names = append(m.names, alias.Name)
		m.types[alias.Name] = t
	}
	return m, nil
}

func validateCommand(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("no oracle command configured")
	}
	if strings.Contains(name, "..") {
		return errors.Errorf("oracle command %q escapes its directory", name)
	}
	return nil
}

type processModule struct {
	names []string
	types map[string]rusttype.Type
}

func (m *processModule) Aliases() []string {
	return m.names
}

func (m *processModule) Resolve(alias string) rusttype.Type {
	return m.types[alias]
}

func (m *processModule) CanCombine(a, b rusttype.Type) bool {
	return rusttype.Unify(a, b)
}
