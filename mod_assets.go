package corridor

import (
	"context"

	"github.com/google/uuid"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// ModelAsset is a loaded model graph with the clips that animate its parts.
type ModelAsset struct {
	Id    AssetId
	Path  string
	Root  *Node
	Clips []*AnimationClip
}

type ModelLoader interface {
	LoadModel(ctx context.Context, path string) (*ModelAsset, error)
}

type modelLoadResult struct {
	id    AssetId
	path  string
	model *ModelAsset
	err   error
}

// AssetServer loads models off the frame goroutine. Finished loads queue up
// until Poll hands them to their callbacks, so callbacks always run inside
// the tick.
type AssetServer struct {
	loader    ModelLoader
	log       Logger
	ctx       context.Context
	cancel    context.CancelFunc
	completed chan modelLoadResult
	callbacks map[AssetId]func(*ModelAsset, error)
	pending   int
}

type AssetServerModule struct {
	Loader ModelLoader
}

func NewAssetServer(loader ModelLoader, log Logger) *AssetServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &AssetServer{
		loader:    loader,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		completed: make(chan modelLoadResult, 16),
		callbacks: make(map[AssetId]func(*ModelAsset, error)),
	}
}

// LoadModel starts loading path and returns the id the model will carry.
// onLoad receives either the model or the load error.
func (server *AssetServer) LoadModel(path string, onLoad func(*ModelAsset, error)) AssetId {
	id := makeAssetId()
	server.callbacks[id] = onLoad
	server.pending++

	go func() {
		model, err := server.loader.LoadModel(server.ctx, path)
		select {
		case server.completed <- modelLoadResult{id: id, path: path, model: model, err: err}:
		case <-server.ctx.Done():
		}
	}()

	return id
}

// Pending is the number of loads whose callbacks have not run yet.
func (server *AssetServer) Pending() int {
	return server.pending
}

// Poll runs the callbacks of every load that finished since the last call.
func (server *AssetServer) Poll() int {
	handled := 0
	for {
		select {
		case res := <-server.completed:
			server.finish(res)
			handled++
		default:
			return handled
		}
	}
}

// Wait blocks until every pending load has been handed to its callback.
func (server *AssetServer) Wait(ctx context.Context) error {
	for server.pending > 0 {
		select {
		case res := <-server.completed:
			server.finish(res)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Close abandons in-flight loads.
func (server *AssetServer) Close() {
	server.cancel()
}

func (server *AssetServer) finish(res modelLoadResult) {
	server.pending--
	onLoad := server.callbacks[res.id]
	delete(server.callbacks, res.id)

	if res.err != nil {
		server.log.Warnf("model %s failed to load: %v", res.path, res.err)
	} else {
		res.model.Id = res.id
		res.model.Path = res.path
		server.log.Debugf("model %s loaded as %s", res.path, res.id)
	}

	if onLoad != nil {
		onLoad(res.model, res.err)
	}
}

func (mod AssetServerModule) Install(app *App, cmd *Commands) {
	server := NewAssetServer(mod.Loader, app.Logger())
	app.addResources(server)
	app.UseSystem(
		System(assetSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func assetSystem(server *AssetServer) {
	server.Poll()
}
