package config

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"termchess/engine"
)

var (
	cfgFile    = "termchess/config.json"
	logFile    = "termchess/termchess.log"
	historyDir = "termchess/history"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("Config error: %s", e.err)
}

type ConfigColors struct {
	LightSquare int `json:"light_square"`
	DarkSquare  int `json:"dark_square"`
	WhitePiece  int `json:"white_piece"`
	BlackPiece  int `json:"black_piece"`
	CursorBG    int `json:"cursor_bg"`
	SelectedBG  int `json:"selected_bg"`
	Coordinates int `json:"coordinates"`
}

// PieceSymbols are the glyphs drawn for one side.
type PieceSymbols struct {
	King   rune `json:"king"`
	Queen  rune `json:"queen"`
	Rook   rune `json:"rook"`
	Bishop rune `json:"bishop"`
	Knight rune `json:"knight"`
	Pawn   rune `json:"pawn"`
}

func (p PieceSymbols) runes() []rune {
	return []rune{p.King, p.Queen, p.Rook, p.Bishop, p.Knight, p.Pawn}
}

type ConfigSymbols struct {
	White PieceSymbols `json:"white"`
	Black PieceSymbols `json:"black"`
	Empty rune         `json:"empty"`
}

type Theme struct {
	DrawCursorBackground bool          `json:"draw_cursor_bg"`
	ShowCoordinates      bool          `json:"show_coordinates"`
	Colors               ConfigColors  `json:"colors"`
	Symbols              ConfigSymbols `json:"symbols"`
}

// ServiceConfig locates the move service.
type ServiceConfig struct {
	BaseURL          string `json:"base_url"`
	ValidatePath     string `json:"validate_path"`
	MovePath         string `json:"move_path"`
	RequestTimeoutMs int    `json:"request_timeout_ms"`
	AIDelayMs        int    `json:"ai_delay_ms"`
}

// Engine returns the client settings for the service.
func (s ServiceConfig) Engine() engine.Config {
	return engine.Config{
		BaseURL:      s.BaseURL,
		ValidatePath: s.ValidatePath,
		MovePath:     s.MovePath,
	}
}

func (s ServiceConfig) RequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

func (s ServiceConfig) AIDelay() time.Duration {
	return time.Duration(s.AIDelayMs) * time.Millisecond
}

// RecordConfig controls game records. An empty Dir means the XDG data dir.
type RecordConfig struct {
	Enabled bool   `json:"enabled"`
	Dir     string `json:"dir"`
}

type Config struct {
	Theme   Theme         `json:"theme"`
	Service ServiceConfig `json:"service"`
	Record  RecordConfig  `json:"record"`
	LogFile string        `json:"log_file"`
}

func InitConfig() (*Config, error) {
	config := DefaultConfig
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err == nil {
		if err := readCfgFile(absPath, &config); err != nil {
			return nil, err
		}
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) Validate() error {
	runes := append(c.Theme.Symbols.White.runes(), c.Theme.Symbols.Black.runes()...)
	runes = append(runes, c.Theme.Symbols.Empty)
	for _, r := range runes {
		if r < 32 || (r >= 127 && r <= 159) {
			return &InvalidConfig{"Unicode characters 1-31 and 127-159 are not allowed"}
		}
	}
	u, err := url.Parse(c.Service.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &InvalidConfig{fmt.Sprintf("service base_url %q is not an http(s) URL", c.Service.BaseURL)}
	}
	if c.Service.RequestTimeoutMs < 0 || c.Service.AIDelayMs < 0 {
		return &InvalidConfig{"durations must not be negative"}
	}
	return nil
}

// HistoryDir returns the directory game records are written to.
func (c *Config) HistoryDir() string {
	if c.Record.Dir != "" {
		return c.Record.Dir
	}
	return filepath.Join(xdg.DataHome, historyDir)
}

// LogPath returns the log file path, creating its parent directory.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.LogFile), 0755); err != nil {
			return "", err
		}
		return c.LogFile, nil
	}
	return xdg.StateFile(logFile)
}

func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return saveCfgFile(absPath, c, 0664)
}

func saveCfgFile(filePath string, a interface{}, perm fs.FileMode) error {
	jsonData, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, jsonData, perm)
}

func readCfgFile(filePath string, a interface{}) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, a); err != nil {
		return &InvalidConfig{fmt.Sprintf("%s: %v", filePath, err)}
	}
	return nil
}
