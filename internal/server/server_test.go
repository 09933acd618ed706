package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/material-adapter/constants"
	"github.com/joseph-ayodele/material-adapter/internal/async"
	"github.com/joseph-ayodele/material-adapter/internal/codec"
	"github.com/joseph-ayodele/material-adapter/internal/common"
	"github.com/joseph-ayodele/material-adapter/internal/entity"
	"github.com/joseph-ayodele/material-adapter/internal/llm"
	"github.com/joseph-ayodele/material-adapter/internal/repository"
	"github.com/joseph-ayodele/material-adapter/internal/storage"
)

type stubLLM struct{}

func (stubLLM) Adapt(ctx context.Context, req llm.AdaptRequest) (llm.AdaptResult, error) {
	return llm.Adapted("Texto adaptado.\n\nCom passos curtos."), nil
}

type harness struct {
	client *AdaptationClient
	stores *repository.Stores
	class  *entity.Class
	codec  *codec.Codec
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	stores, err := repository.InitStores(ctx, common.DatabaseConfig{InMemory: true}, false, logger)
	if err != nil {
		t.Fatalf("InitStores: %v", err)
	}
	store, err := storage.NewLocalStore(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}
	class, err := stores.Classes.GetOrCreateByName(ctx, "Turma A", nil)
	if err != nil {
		t.Fatalf("GetOrCreateByName: %v", err)
	}
	docCodec := codec.New(logger)

	stack := NewStack(Components{
		Stores:       stores,
		Store:        store,
		LLM:          stubLLM{},
		Codec:        docCodec,
		Concurrency:  2,
		QueueOptions: []async.Option{async.WithWorkers(1), async.WithJobTimeout(time.Minute)},
		Logger:       logger,
	})

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(logger)))
	RegisterAdaptationServer(srv, stack.Service)
	go func() { _ = srv.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		srv.Stop()
		stack.Queue.Shutdown(context.Background())
		stores.Close(logger)
	})

	return &harness{client: NewAdaptationClient(conn), stores: stores, class: class, codec: docCodec}
}

func (h *harness) call(t *testing.T, method string, in map[string]any) (*structpb.Struct, error) {
	t.Helper()
	req, err := structpb.NewStruct(in)
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, "test-req")
	return h.client.Call(ctx, method, req)
}

func (h *harness) mustCall(t *testing.T, method string, in map[string]any) *structpb.Struct {
	t.Helper()
	out, err := h.call(t, method, in)
	if err != nil {
		t.Fatalf("%s: %v", method, err)
	}
	return out
}

func field(s *structpb.Struct, key string) *structpb.Value {
	return s.GetFields()[key]
}

func (h *harness) registerDocx(t *testing.T) string {
	t.Helper()
	doc, err := h.codec.Render(context.Background(), "Introdução.\n\nO ciclo da água tem etapas.", constants.DOCX, codec.Typography{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	m := h.mustCall(t, MethodRegisterMaterial, map[string]any{
		"class_id":  h.class.ID.String(),
		"file_name": "ciclo.docx",
		"content":   base64.StdEncoding.EncodeToString(doc),
	})
	if got := field(m, "file_type").GetStringValue(); got != "docx" {
		t.Fatalf("file_type: want=docx got=%s", got)
	}
	return field(m, "id").GetStringValue()
}

func (h *harness) createProfile(t *testing.T, name string) string {
	t.Helper()
	p := h.mustCall(t, MethodCreateProfile, map[string]any{
		"class_id":     h.class.ID.String(),
		"profile_name": name,
		"fragmentacao": "alta",
		"abstracao":    "baixa",
		"mediacao":     "guiado",
		"dislexia":     "sim",
		"tipo_letra":   "bastao",
	})
	return field(p, "id").GetStringValue()
}

func TestAdaptationServiceEndToEnd(t *testing.T) {
	h := newHarness(t)
	materialID := h.registerDocx(t)
	p1 := h.createProfile(t, "Perfil 1")
	p2 := h.createProfile(t, "Perfil 2")

	list := h.mustCall(t, MethodListProfiles, map[string]any{"class_id": h.class.ID.String()})
	if n := len(field(list, "profiles").GetListValue().GetValues()); n != 2 {
		t.Fatalf("ListProfiles: want=2 got=%d", n)
	}

	res := h.mustCall(t, MethodProcessMaterial, map[string]any{
		"material_id": materialID,
		"profile_ids": []any{p1, uuid.NewString(), p2},
	})
	if got := field(res, "success_count").GetNumberValue(); got != 2 {
		t.Fatalf("success_count: want=2 got=%v", got)
	}
	if got := field(res, "skipped").GetNumberValue(); got != 1 {
		t.Fatalf("skipped: want=1 got=%v", got)
	}
	results := field(res, "results").GetListValue().GetValues()
	first := results[0].GetStructValue()
	if got := field(first, "generated_file_name").GetStringValue(); got != "ciclo_Perfil_1.docx" {
		t.Fatalf("generated_file_name: got=%s", got)
	}
	adaptedID := field(first, "adapted_material_id").GetStringValue()

	dl := h.mustCall(t, MethodGetDownloadURL, map[string]any{"adapted_material_id": adaptedID})
	if url := field(dl, "url").GetStringValue(); !strings.HasPrefix(url, "file://") {
		t.Fatalf("url: got=%s", url)
	}

	exp := h.mustCall(t, MethodExportHistory, map[string]any{"material_id": materialID})
	xlsx, err := base64.StdEncoding.DecodeString(field(exp, "xlsx").GetStringValue())
	if err != nil {
		t.Fatalf("decode xlsx: %v", err)
	}
	if !bytes.HasPrefix(xlsx, []byte("PK")) {
		t.Fatalf("xlsx: want zip container")
	}
}

func TestAdaptationServiceEnqueueBatch(t *testing.T) {
	h := newHarness(t)
	materialID := h.registerDocx(t)
	p1 := h.createProfile(t, "Perfil 1")

	job := h.mustCall(t, MethodEnqueueBatch, map[string]any{"material_id": materialID, "profile_ids": []any{p1}})
	jobID := field(job, "job_id").GetStringValue()

	deadline := time.Now().Add(10 * time.Second)
	for {
		st := h.mustCall(t, MethodGetBatchStatus, map[string]any{"job_id": jobID})
		state := field(st, "state").GetStringValue()
		if state == string(async.JobSucceeded) {
			r := field(st, "result").GetStructValue()
			if got := field(r, "success_count").GetNumberValue(); got != 1 {
				t.Fatalf("success_count: want=1 got=%v", got)
			}
			return
		}
		if state == string(async.JobFailed) {
			t.Fatalf("job failed: %s", field(st, "error").GetStringValue())
		}
		if time.Now().After(deadline) {
			t.Fatalf("job %s still %s", jobID, state)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAdaptationServiceErrorCodes(t *testing.T) {
	h := newHarness(t)

	cases := []struct {
		name   string
		method string
		in     map[string]any
		want   codes.Code
	}{
		{"bad material id", MethodProcessMaterial, map[string]any{"material_id": "x"}, codes.InvalidArgument},
		{"bad profile id", MethodProcessMaterial, map[string]any{"material_id": uuid.NewString(), "profile_ids": []any{"nope"}}, codes.InvalidArgument},
		{"profile ids not a list", MethodProcessMaterial, map[string]any{"material_id": uuid.NewString(), "profile_ids": "x"}, codes.InvalidArgument},
		{"unknown material", MethodProcessMaterial, map[string]any{"material_id": uuid.NewString(), "profile_ids": []any{uuid.NewString()}}, codes.NotFound},
		{"unsupported upload", MethodRegisterMaterial, map[string]any{
			"class_id": h.class.ID.String(), "file_name": "notes.txt", "content": base64.StdEncoding.EncodeToString([]byte("x")),
		}, codes.InvalidArgument},
		{"content type mismatch", MethodRegisterMaterial, map[string]any{
			"class_id": h.class.ID.String(), "file_name": "a.pdf", "content_type": constants.ContentTypeDOCX,
			"content": base64.StdEncoding.EncodeToString([]byte("x")),
		}, codes.InvalidArgument},
		{"directory without root", MethodRegisterDir, map[string]any{"class_id": h.class.ID.String()}, codes.InvalidArgument},
		{"content not base64", MethodRegisterMaterial, map[string]any{
			"class_id": h.class.ID.String(), "file_name": "a.pdf", "content": "***",
		}, codes.InvalidArgument},
		{"unknown adapted material", MethodGetDownloadURL, map[string]any{"adapted_material_id": uuid.NewString()}, codes.NotFound},
		{"unknown job", MethodGetBatchStatus, map[string]any{"job_id": uuid.NewString()}, codes.NotFound},
		{"unknown export material", MethodExportHistory, map[string]any{"material_id": uuid.NewString()}, codes.NotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.call(t, tc.method, tc.in)
			if got := status.Code(err); got != tc.want {
				t.Fatalf("%s: want=%s got=%s (%v)", tc.method, tc.want, got, err)
			}
		})
	}
}

func TestProcessMaterialZeroProfiles(t *testing.T) {
	h := newHarness(t)
	res := h.mustCall(t, MethodProcessMaterial, map[string]any{"material_id": uuid.NewString()})
	if got := field(res, "success_count").GetNumberValue(); got != 0 {
		t.Fatalf("success_count: want=0 got=%v", got)
	}
	if results := field(res, "results").GetListValue(); results == nil || len(results.GetValues()) != 0 {
		t.Fatalf("results: want empty list got=%v", results)
	}
}

func TestRegisterDirectoryRPC(t *testing.T) {
	h := newHarness(t)
	root := t.TempDir()
	for name, data := range map[string]string{
		"aula1.pdf":   "%PDF-1.4 fake",
		"aula2.docx":  "docx bytes",
		"leia.txt":    "ignored",
		".oculto.pdf": "hidden",
	} {
		if err := os.WriteFile(filepath.Join(root, name), []byte(data), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	res := h.mustCall(t, MethodRegisterDir, map[string]any{
		"class_id":  h.class.ID.String(),
		"root_path": root,
	})
	if got := field(res, "succeeded").GetNumberValue(); got != 2 {
		t.Fatalf("succeeded: want=2 got=%v", got)
	}
	if got := len(field(res, "files").GetListValue().GetValues()); got != 2 {
		t.Fatalf("files: want=2 got=%d", got)
	}

	res = h.mustCall(t, MethodRegisterDir, map[string]any{
		"class_id":    h.class.ID.String(),
		"root_path":   root,
		"skip_hidden": false,
	})
	if got := field(res, "matched").GetNumberValue(); got != 3 {
		t.Fatalf("matched with hidden files: want=3 got=%v", got)
	}
}

func TestTypedClientMethods(t *testing.T) {
	h := newHarness(t)
	h.createProfile(t, "Perfil 1")

	req, err := structpb.NewStruct(map[string]any{"class_id": h.class.ID.String()})
	if err != nil {
		t.Fatalf("NewStruct: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	list, err := h.client.ListProfiles(ctx, req)
	if err != nil {
		t.Fatalf("ListProfiles: %v", err)
	}
	if n := len(field(list, "profiles").GetListValue().GetValues()); n != 1 {
		t.Fatalf("ListProfiles: want=1 got=%d", n)
	}

	_, err = h.client.GetBatchStatus(ctx, &structpb.Struct{})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("GetBatchStatus without job_id: want=InvalidArgument got=%v", err)
	}
}

func TestUnimplementedAdaptationServer(t *testing.T) {
	var srv AdaptationServer = UnimplementedAdaptationServer{}
	calls := map[string]unaryCall{
		MethodProcessMaterial:  AdaptationServer.ProcessMaterial,
		MethodRegisterDir:      AdaptationServer.RegisterDirectory,
		MethodExportHistory:    AdaptationServer.ExportHistory,
		MethodGetDownloadURL:   AdaptationServer.GetDownloadURL,
		MethodRegisterMaterial: AdaptationServer.RegisterMaterial,
	}
	for name, call := range calls {
		out, err := call(srv, context.Background(), &structpb.Struct{})
		if out != nil || status.Code(err) != codes.Unimplemented {
			t.Fatalf("%s: want Unimplemented got=%v", name, err)
		}
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("%s: error should name the method got=%v", name, err)
		}
	}
}
