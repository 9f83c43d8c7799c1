package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTempOutput runs runStage against src for the given output stage and
// returns whatever it wrote.
func writeTempOutput(t *testing.T, src, stage string) string {
	t.Helper()
	prevStage := outputStageFlag
	outputStageFlag = stage
	defer func() { outputStageFlag = prevStage }()

	out, err := os.CreateTemp(t.TempDir(), "spl-out-*")
	require.NoError(t, err)
	defer out.Close()

	require.NoError(t, runStage(src, out))

	data, err := os.ReadFile(out.Name())
	require.NoError(t, err)
	return string(data)
}

func TestRunStageAstPrintsParsedBlock(t *testing.T) {
	out := writeTempOutput(t, "let a = 1 + 2;", "ast")
	assert.Contains(t, out, "Let{a = (1 + 2)}")
}

func TestRunStageIrPrintsInstructions(t *testing.T) {
	out := writeTempOutput(t, "let a = 1 + 2;", "ir")
	assert.Contains(t, out, "li ")
	assert.Contains(t, out, "add ")
}

func TestRunStageRunExecutesProgram(t *testing.T) {
	out := writeTempOutput(t, "print(1 + 2);", "run")
	assert.Equal(t, "3\n", out)
}

func TestRunStageRejectsUnknownStage(t *testing.T) {
	prevStage := outputStageFlag
	outputStageFlag = "bogus"
	defer func() { outputStageFlag = prevStage }()

	out, err := os.CreateTemp(t.TempDir(), "spl-out-*")
	require.NoError(t, err)
	defer out.Close()

	err = runStage("print(1);", out)
	assert.Error(t, err)
}

func TestRunStagePropagatesParseErrors(t *testing.T) {
	prevStage := outputStageFlag
	outputStageFlag = "run"
	defer func() { outputStageFlag = prevStage }()

	out, err := os.CreateTemp(t.TempDir(), "spl-out-*")
	require.NoError(t, err)
	defer out.Close()

	err = runStage("let = ;", out)
	assert.Error(t, err)
}

func TestRunFileReadsFromDisk(t *testing.T) {
	prevStage, prevOut := outputStageFlag, outputFileFlag
	outputStageFlag = "run"
	defer func() {
		outputStageFlag = prevStage
		outputFileFlag = prevOut
	}()

	dir := t.TempDir()
	src := filepath.Join(dir, "prog.spl")
	require.NoError(t, os.WriteFile(src, []byte("print(41 + 1);"), 0o644))

	dest := filepath.Join(dir, "out.txt")
	outputFileFlag = dest

	require.NoError(t, runFile(src))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "42\n", string(data))
}

func TestArchRegistersKnowsX86_64(t *testing.T) {
	k, ok := archRegisters["x86_64"]
	require.True(t, ok)
	assert.Equal(t, 8, k)
}

// chdirAndHome isolates a test from both the real working directory and
// the real $HOME, since config.Load consults both for an .splrc.yaml.
func chdirAndHome(t *testing.T, dir string) func() {
	t.Helper()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	oldHome, hadHome := os.LookupEnv("HOME")

	require.NoError(t, os.Chdir(dir))
	require.NoError(t, os.Setenv("HOME", dir))

	return func() {
		_ = os.Chdir(oldWd)
		if hadHome {
			_ = os.Setenv("HOME", oldHome)
		} else {
			_ = os.Unsetenv("HOME")
		}
	}
}

// resetFlagState isolates a test that touches package-level flag
// variables and the cobra flags' Changed bookkeeping, both of which
// runRoot reads to decide flag-vs-config precedence.
func resetFlagState(t *testing.T) {
	t.Helper()
	prevArch, prevStage, prevColor := archFlag, outputStageFlag, color.NoColor
	archChanged := rootCmd.Flags().Lookup("arch").Changed
	stageChanged := rootCmd.Flags().Lookup("output-stage").Changed
	t.Cleanup(func() {
		archFlag, outputStageFlag, color.NoColor = prevArch, prevStage, prevColor
		rootCmd.Flags().Lookup("arch").Changed = archChanged
		rootCmd.Flags().Lookup("output-stage").Changed = stageChanged
	})
}

func TestRunRootAppliesConfigWhenFlagsNotSet(t *testing.T) {
	resetFlagState(t)
	dir := t.TempDir()
	restore := chdirAndHome(t, dir)
	defer restore()

	rc := "output_stage: ast\ncolor: false\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".splrc.yaml"), []byte(rc), 0o644))

	src := filepath.Join(dir, "prog.spl")
	require.NoError(t, os.WriteFile(src, []byte("let a = 1 + 2;"), 0o644))

	outputFileFlag = filepath.Join(dir, "out.txt")
	defer func() { outputFileFlag = "" }()

	require.NoError(t, runRoot(rootCmd, []string{src}))
	assert.Equal(t, "ast", outputStageFlag)
	assert.True(t, color.NoColor)

	data, err := os.ReadFile(outputFileFlag)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Let{a = (1 + 2)}")
}

func TestRunRootPrefersExplicitFlagOverConfig(t *testing.T) {
	resetFlagState(t)
	dir := t.TempDir()
	restore := chdirAndHome(t, dir)
	defer restore()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".splrc.yaml"), []byte("output_stage: ast\n"), 0o644))

	require.NoError(t, rootCmd.Flags().Set("output-stage", "ir"))

	src := filepath.Join(dir, "prog.spl")
	require.NoError(t, os.WriteFile(src, []byte("let a = 1 + 2;"), 0o644))
	outputFileFlag = filepath.Join(dir, "out.txt")
	defer func() { outputFileFlag = "" }()

	require.NoError(t, runRoot(rootCmd, []string{src}))
	assert.Equal(t, "ir", outputStageFlag)
}
