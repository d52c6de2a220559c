// Command t2-worker is the isolated child process the transcription
// component spawns per session. It loads a speech model, decodes one audio
// scratch file, and writes a structured result file, then exits. Keeping
// model inference in its own process means a native crash or a wedged
// inference thread never takes the daemon's hotkey listener or terminal UI
// down with it.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/talktotext/t2/internal/transcribe"
)

// crashLog rotates this process's diagnostics to their own file instead of
// stdout/stderr, which the parent does not capture: it reads only the exit
// code and the result file.
func crashLog() *lumberjack.Logger {
	dir := os.TempDir()
	if usr, err := user.Current(); err == nil {
		dir = filepath.Join(usr.HomeDir, ".config", "t2")
	}
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, "t2-worker.log"),
		MaxSize:    5, // megabytes
		MaxBackups: 2,
		MaxAge:     14, // days
	}
}

func main() {
	lj := crashLog()
	defer lj.Close()
	log.SetOutput(lj)

	var (
		audioPath = flag.String("audio", "", "path to the length-prefixed float32 audio scratch file")
		modelDir  = flag.String("model", "", "path to the model directory")
		device    = flag.String("device", "cpu", "compute device: cpu or cuda")
		lang      = flag.String("lang", "", "optional BCP-47-like language hint")
		outPath   = flag.String("out", "", "path to write the JSON result file to")
	)
	flag.Parse()

	if *audioPath == "" || *modelDir == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "t2-worker: --audio, --model, and --out are required")
		os.Exit(2)
	}

	result := run(*audioPath, *modelDir, transcribe.Device(*device), *lang)

	if err := transcribe.WriteResultFile(*outPath, result); err != nil {
		log.Printf("[XSCRIBE-WORKER] failed to write result file: %v", err)
		os.Exit(1)
	}

	if result.Error != "" {
		os.Exit(1)
	}
}

func run(audioPath, modelDir string, device transcribe.Device, lang string) transcribe.Result {
	samples, err := transcribe.ReadAudioFile(audioPath)
	if err != nil {
		return transcribe.Result{Error: fmt.Sprintf("reading audio file: %v", err)}
	}

	engine, err := transcribe.NewSherpaEngine(modelDir, device)
	if err != nil {
		return transcribe.Result{Error: fmt.Sprintf("loading model: %v", err)}
	}
	defer engine.Close()

	result, err := engine.Transcribe(samples, lang)
	if err != nil {
		return transcribe.Result{Error: fmt.Sprintf("inference: %v", err)}
	}
	return result
}
