package server

// indexHTML is the minimal upload form served at the root. It posts the
// document to /api/games and links the preview and download of the result.
const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Document to Game</title>
<style>
  body { font-family: 'Segoe UI', system-ui, sans-serif; background: linear-gradient(135deg, #0f0c29, #302b63, #24243e); color: #eee; min-height: 100vh; display: flex; align-items: center; justify-content: center; margin: 0; }
  .panel { background: rgba(255,255,255,0.06); border-radius: 16px; padding: 2rem 2.5rem; max-width: 28rem; width: 100%; }
  h1 { margin-top: 0; font-size: 1.5rem; }
  label { display: block; margin: 1rem 0 0.35rem; }
  input[type=file], select { width: 100%; padding: 0.5rem; border-radius: 8px; border: 1px solid rgba(255,255,255,0.25); background: rgba(0,0,0,0.3); color: #eee; }
  button { margin-top: 1.5rem; width: 100%; padding: 0.7rem; border: none; border-radius: 8px; background: #4a90d9; color: white; font-size: 1rem; cursor: pointer; }
  button:disabled { opacity: 0.5; cursor: wait; }
  #result { margin-top: 1.25rem; line-height: 1.6; }
  #result a { color: #7fd4ff; }
  .error { color: #ff8080; }
</style>
</head>
<body>
<div class="panel">
  <h1>Document to Game</h1>
  <form id="form">
    <label for="file">Document (PDF, Markdown, HTML or text)</label>
    <input type="file" id="file" name="file" accept=".pdf,.md,.markdown,.html,.htm,.txt" required>
    <label for="game_type">Game type</label>
    <select id="game_type" name="game_type">
      <option value="matching">Matching</option>
      <option value="quiz">Quiz</option>
      <option value="flashcards">Flashcards</option>
    </select>
    <button type="submit" id="go">Generate game</button>
  </form>
  <div id="result"></div>
</div>
<script>
const form = document.getElementById('form');
const result = document.getElementById('result');
const go = document.getElementById('go');
form.addEventListener('submit', async (e) => {
  e.preventDefault();
  go.disabled = true;
  result.textContent = 'Generating, this can take a minute or two...';
  try {
    const resp = await fetch('/api/games', { method: 'POST', body: new FormData(form) });
    if (!resp.ok) {
      result.innerHTML = '<span class="error"></span>';
      result.firstChild.textContent = await resp.text();
      return;
    }
    const game = await resp.json();
    result.innerHTML = '';
    const title = document.createElement('div');
    title.textContent = (game.title || 'Game') + ' (' + game.attempts + ' attempt' + (game.attempts === 1 ? '' : 's') + (game.approved ? ', approved' : ', best effort') + ')';
    const preview = document.createElement('a');
    preview.href = game.preview_url; preview.target = '_blank'; preview.textContent = 'Play it';
    const dl = document.createElement('a');
    dl.href = game.download_url; dl.textContent = 'Download';
    result.append(title, preview, document.createTextNode(' · '), dl);
  } catch (err) {
    result.innerHTML = '<span class="error"></span>';
    result.firstChild.textContent = String(err);
  } finally {
    go.disabled = false;
  }
});
</script>
</body>
</html>
`
