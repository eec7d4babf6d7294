package embed_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/akhildatla/vvm/internal/testutil"
	"github.com/akhildatla/vvm/pkg/asm"
	"github.com/akhildatla/vvm/pkg/embed"
	"github.com/akhildatla/vvm/pkg/vvm"
)

func TestExecute(t *testing.T) {
	result, err := embed.Execute(`
		add_i64s_i64s 2 3 %0
		cast_i64s_Ss %0 %1
		save %1
	`)
	if err != nil {
		t.Fatal(err)
	}
	if result != "5" {
		t.Errorf("got %q, want \"5\"", result)
	}
}

func TestExecuteAssemblyError(t *testing.T) {
	if _, err := embed.Execute("bogus %0"); err == nil {
		t.Fatal("bad assembly should fail")
	}
}

func TestExecuteWithOutput(t *testing.T) {
	var buf bytes.Buffer
	_, err := embed.Execute(`
		@0 = "hi"
		write @0
	`, embed.WithOutput(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hi\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestExecuteFile(t *testing.T) {
	path := testutil.TempFile(t, `
		@0 = "ok"
		save @0
	`, ".vvm")
	result, err := embed.ExecuteFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if result != "ok" {
		t.Errorf("got %q", result)
	}
}

func TestExecuteBytecode(t *testing.T) {
	program, err := asm.Assemble(`
		add_i64s_i64s 40 2 %0
		cast_i64s_Ss %0 %1
		save %1
	`)
	if err != nil {
		t.Fatal(err)
	}
	data, err := vvm.Serialize(program)
	if err != nil {
		t.Fatal(err)
	}
	result, err := embed.ExecuteBytecode(data)
	if err != nil {
		t.Fatal(err)
	}
	if result != "42" {
		t.Errorf("got %q", result)
	}
}

func TestExecuteBytecodeRejectsGarbage(t *testing.T) {
	if _, err := embed.ExecuteBytecode([]byte("not bytecode at all")); err == nil {
		t.Fatal("garbage bytecode should fail")
	}
}

func TestSessionStatePersists(t *testing.T) {
	s := embed.NewSession()
	if _, err := s.Run(`add_i64s_i64s 20 22 *0`); err != nil {
		t.Fatal(err)
	}
	result, err := s.Run(`
		cast_i64s_Ss *0 %0
		save %0
	`)
	if err != nil {
		t.Fatal(err)
	}
	if result != "42" {
		t.Errorf("got %q", result)
	}
}

func TestLoadThroughFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.csv")
	if err := os.WriteFile(path, []byte(testutil.SalesCSV()), 0644); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	result, err := embed.Execute(`
		$0 = {"price": f64v, "quantity": i64v, "category": Sv}
		@0 = `+strconv.Quote(path)+`
		load $0 @0 %0
		member %0 1 %1
		sum_i64v %1 %2
		cast_i64s_Ss %2 %3
		save %3
	`, embed.WithOutput(&buf))
	if err != nil {
		t.Fatal(err)
	}
	if result != "51" {
		t.Errorf("got %q, want \"51\"", result)
	}
}

func TestConsoleSizeBoundsFrames(t *testing.T) {
	var buf bytes.Buffer
	result, err := embed.Execute(`
		$0 = {"v": i64v}
		alloc $0 %0
		member %0 0 %1
		append i64s 1 %1
		append i64s 2 %1
		append i64s 3 %1
		append i64s 4 %1
		append i64s 5 %1
		append i64s 6 %1
		repr $0 %0 %2
		save %2
	`, embed.WithOutput(&buf), embed.WithConsoleSize(7, 40))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "...") {
		t.Errorf("long frame should elide rows: %q", result)
	}
}
