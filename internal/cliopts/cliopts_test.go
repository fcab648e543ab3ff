package cliopts

import "testing"

func TestParseDefaultsJobsToNumCPU(t *testing.T) {
	opts, err := Parse("bdf", "test", []string{"/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if opts.Jobs <= 0 {
		t.Fatalf("expected jobs to default to a positive worker count, got %d", opts.Jobs)
	}
	if opts.TargetDir != "/tmp" {
		t.Fatalf("expected target_dir '/tmp', got %q", opts.TargetDir)
	}
	if opts.MinSize != 1 {
		t.Fatalf("expected default min-size 1, got %d", opts.MinSize)
	}
}

func TestParseRejectsNegativeMinSize(t *testing.T) {
	if _, err := Parse("bdf", "test", []string{"--min-size=-1", "/tmp"}); err == nil {
		t.Fatal("expected an error for negative --min-size")
	}
}

func TestParseCountsVerboseFlags(t *testing.T) {
	opts, err := Parse("bdf", "test", []string{"-v", "-v", "/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if opts.Verbosity != 2 {
		t.Fatalf("expected verbosity 2, got %d", opts.Verbosity)
	}
}

func TestParseHonorsExplicitJobs(t *testing.T) {
	opts, err := Parse("bdf", "test", []string{"--jobs=4", "/tmp"})
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if opts.Jobs != 4 {
		t.Fatalf("expected jobs 4, got %d", opts.Jobs)
	}
}

func TestParseRequiresTargetDir(t *testing.T) {
	if _, err := Parse("bdf", "test", []string{}); err == nil {
		t.Fatal("expected an error when target_dir is missing")
	}
}
