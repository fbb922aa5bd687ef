package launcher

import (
	"os/exec"

	"launcherd/pkg/types"
)

// SanityCheck looks up the external programs the pipelines shell out to.
// It does not mutate state and is safe to call at any time.
func (s *Service) SanityCheck() []types.ToolCheck {
	return []types.ToolCheck{
		checkTool("hpatchz", s.cfg.Hpatchz),
		checkTool("wineboot", s.cfg.Wineboot),
		checkTool("winetricks", s.cfg.Winetricks),
	}
}

func checkTool(name, configured string) types.ToolCheck {
	bin := configured
	if bin == "" {
		bin = name
	}
	r := types.ToolCheck{Name: name}
	path, err := exec.LookPath(bin)
	if err != nil {
		r.Error = err.Error()
		return r
	}
	r.Found = true
	r.Path = path
	return r
}
